// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard input to the login and news screens

package tui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sawant8123/news-api-portal/internal/auth"
	"github.com/sawant8123/news-api-portal/internal/browser"
	"github.com/sawant8123/news-api-portal/internal/listing"
	"github.com/sawant8123/news-api-portal/internal/session"
	"github.com/sawant8123/news-api-portal/internal/tui/articles"
	"github.com/sawant8123/news-api-portal/internal/tui/picker"
	"github.com/sawant8123/news-api-portal/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenNews
	ScreenPicker
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum frame width
	frameOverhead    = 2  // Header and footer lines
	newsChromeHeight = 8  // Tagline, tabs, search, spacing and message box
)

// MsgSessionExpired is shown on the login screen after an authorization failure
const MsgSessionExpired = "Your session has expired. Please sign in again."

// loginDoneMsg is sent when a sign-in attempt finishes
type loginDoneMsg struct {
	session session.Session
	err     error
}

// fetchDoneMsg carries a headline outcome back to the controller that issued it
type fetchDoneMsg struct {
	controller *listing.Controller
	outcome    listing.Outcome
}

// debounceMsg fires DebounceDelay after a search keystroke
type debounceMsg struct {
	controller *listing.Controller
	gen        uint64
}

// authLostMsg is sent by the client when the session cannot be refreshed
type authLostMsg struct {
	reason error
}

// openedMsg is sent after trying to open an article in the browser
type openedMsg struct {
	err error
}

// Deps are the collaborators the TUI drives
type Deps struct {
	Fetcher listing.Fetcher
	Store   session.Store
	Flow    *auth.Flow
	Open    browser.Opener
}

// App is the root model for the TUI
type App struct {
	deps       Deps
	screen     Screen
	width      int
	height     int
	userName   string
	lastUpdate time.Time
	now        func() time.Time

	spinner spinner.Model

	// Login screen
	loginBusy   bool
	loginErr    string
	pasting     bool
	tokenInput  textinput.Model
	cancelLogin context.CancelFunc

	// News screen
	controller *listing.Controller
	search     textinput.Model
	searching  bool
	articles   *articles.View
	picker     *picker.Picker
	notice     string
}

// New creates a new TUI application. A stored session opens the news screen directly.
func New(deps Deps) *App {
	if deps.Open == nil {
		deps.Open = browser.Open
	}

	a := &App{
		deps:    deps,
		screen:  ScreenLogin,
		now:     time.Now,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
	}

	a.tokenInput = textinput.New()
	a.tokenInput.Placeholder = "eyJhbGciOi..."
	a.tokenInput.EchoMode = textinput.EchoPassword
	a.tokenInput.EchoCharacter = '•'

	a.search = textinput.New()
	a.search.Placeholder = "Search news..."
	a.search.Prompt = ""
	a.search.CharLimit = 200

	if s, err := deps.Store.Get(); err == nil && s.SignedIn() {
		a.userName = s.Name()
		a.screen = ScreenNews
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenNews {
		return a.startNews()
	}
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search.Width = max(10, a.contentWidth()/2)
		if a.articles != nil {
			a.articles.SetSize(a.contentWidth(), a.articlesHeight())
		}
		if a.picker != nil {
			return a.updatePicker(msg)
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Route to current screen
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenNews:
			return a.updateNews(msg)
		case ScreenPicker:
			return a.updatePicker(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case loginDoneMsg:
		return a.handleLoginDone(msg)

	case fetchDoneMsg:
		return a.handleFetchDone(msg)

	case debounceMsg:
		if msg.controller == nil || msg.controller != a.controller {
			return a, nil
		}
		return a, a.runFetch(a.controller.DebounceElapsed(msg.gen))

	case authLostMsg:
		if a.screen == ScreenLogin && a.controller == nil {
			return a, nil
		}
		slog.Warn("Session lost", "reason", msg.reason)
		a.toLogin(MsgSessionExpired)
		return a, nil

	case picker.SelectedMsg:
		a.screen = ScreenNews
		a.picker = nil
		return a, a.runFetch(a.setCountry(msg.Code))

	case picker.CancelledMsg:
		a.screen = ScreenNews
		a.picker = nil
		return a, nil

	case openedMsg:
		if msg.err != nil {
			a.notice = "Could not open browser: " + msg.err.Error()
		}
		return a, nil

	default:
		// Forward unknown messages to the picker (needed for huh form internals)
		if a.screen == ScreenPicker && a.picker != nil {
			return a.updatePicker(msg)
		}
	}

	return a, nil
}

func (a *App) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.picker == nil {
		return a, nil
	}
	model, cmd := a.picker.Update(msg)
	a.picker = model.(*picker.Picker)
	return a, cmd
}

// toLogin drops all listing state and shows the login screen
func (a *App) toLogin(message string) {
	if a.cancelLogin != nil {
		a.cancelLogin()
		a.cancelLogin = nil
	}
	a.screen = ScreenLogin
	a.controller = nil
	a.articles = nil
	a.picker = nil
	a.searching = false
	a.search.Blur()
	a.search.SetValue("")
	a.notice = ""
	a.userName = ""
	a.loginBusy = false
	a.pasting = false
	a.loginErr = message
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.viewLogin()
	case ScreenNews:
		content = a.viewNews()
	case ScreenPicker:
		content = a.viewPicker()
	default:
		content = a.viewLogin()
	}

	return a.wrapWithFrame(content)
}

// viewPicker renders the country picker
func (a *App) viewPicker() string {
	if a.picker != nil {
		return styles.ActivePanel.Render(a.picker.View())
	}
	return ""
}

// contentWidth is the usable width inside the frame
func (a *App) contentWidth() int {
	return max(minTerminalWidth, a.width) - 2
}

// contentHeight calculates the height available between header and footer
func (a *App) contentHeight() int {
	return max(0, a.height-frameOverhead)
}

// articlesHeight is what remains for articles below the news chrome
func (a *App) articlesHeight() int {
	return max(0, a.contentHeight()-newsChromeHeight)
}

// Navigator forwards forced logins from the HTTP client into the running program
type Navigator struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewNavigator creates a Navigator not yet attached to a program
func NewNavigator() *Navigator {
	return &Navigator{}
}

// ForceLogin implements client.Navigator. It never blocks the caller.
func (n *Navigator) ForceLogin(reason error) {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()

	if p != nil {
		go p.Send(authLostMsg{reason: reason})
	}
}

func (n *Navigator) attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

// Run starts the TUI
func Run(deps Deps, nav *Navigator) error {
	app := New(deps)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	if nav != nil {
		nav.attach(p)
	}
	_, err := p.Run()
	return err
}
