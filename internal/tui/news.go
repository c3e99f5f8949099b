// ABOUTME: News screen of the TUI
// ABOUTME: Feeds keys to the listing controller and renders tabs, search and articles

package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sawant8123/news-api-portal/internal/listing"
	"github.com/sawant8123/news-api-portal/internal/tui/articles"
	"github.com/sawant8123/news-api-portal/internal/tui/icons"
	"github.com/sawant8123/news-api-portal/internal/tui/picker"
	"github.com/sawant8123/news-api-portal/internal/tui/styles"
)

const tagline = "Stay informed, connected, and empowered"

// startNews mounts a fresh listing controller and issues its initial load
func (a *App) startNews() tea.Cmd {
	a.controller = listing.NewController(a.deps.Fetcher, a.deps.Store)
	a.articles = articles.New(a.contentWidth(), a.articlesHeight())
	a.articles.SetClock(a.now)
	a.search.SetValue("")
	a.searching = false
	a.notice = ""

	return tea.Batch(a.runFetch(a.controller.Init()), a.spinner.Tick)
}

// runFetch performs f off the update loop; nil when nothing was issued
func (a *App) runFetch(f *listing.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	c := a.controller
	return func() tea.Msg {
		return fetchDoneMsg{controller: c, outcome: f.Run(context.Background())}
	}
}

func (a *App) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	// Results for a controller from before a logout are dropped
	if msg.controller == nil || msg.controller != a.controller {
		return a, nil
	}

	effect := a.controller.Complete(msg.outcome)
	if effect.Stale {
		return a, nil
	}
	if effect.AuthLost {
		slog.Warn("Headlines request unauthorized, signing out", "error", msg.outcome.Err)
		a.toLogin(MsgSessionExpired)
		return a, nil
	}

	a.articles.SetArticles(a.controller.Articles())
	if msg.outcome.Err == nil {
		a.lastUpdate = a.now()
	}
	return a, nil
}

func (a *App) updateNews(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.controller == nil {
		return a, nil
	}
	if a.searching {
		return a.updateSearch(msg)
	}

	a.notice = ""
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "/":
		a.searching = true
		return a, a.search.Focus()
	case "c":
		a.picker = picker.New(a.controller.Filters().Country)
		a.screen = ScreenPicker
		return a, a.picker.Init()
	case "v":
		mode := a.controller.Filters().ViewMode.Toggle()
		a.controller.SetViewMode(mode)
		a.articles.SetMode(mode)
		return a, nil
	case "r":
		a.search.SetValue("")
		return a, a.runFetch(a.controller.Refresh())
	case "tab", "right", "l":
		return a, a.runFetch(a.shiftCategory(1))
	case "shift+tab", "left", "h":
		return a, a.runFetch(a.shiftCategory(-1))
	case "1", "2", "3", "4", "5", "6", "7":
		i := int(msg.String()[0] - '1')
		if i < len(listing.Categories) {
			return a, a.runFetch(a.setCategory(listing.Categories[i].ID))
		}
	case "j", "down":
		a.articles.Next()
	case "k", "up":
		a.articles.Prev()
	case "enter", "o":
		if art, ok := a.articles.Selected(); ok {
			open := a.deps.Open
			return a, func() tea.Msg { return openedMsg{err: open(art.URL)} }
		}
	case "L":
		if err := a.deps.Flow.Logout(); err != nil {
			a.notice = "Logout failed: " + err.Error()
			return a, nil
		}
		a.toLogin("")
	}
	return a, nil
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.searching = false
		a.search.Blur()
		return a, nil
	case "enter":
		a.searching = false
		a.search.Blur()
		return a, a.runFetch(a.controller.Search())
	}

	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() == before {
		return a, cmd
	}

	c := a.controller
	gen := c.SetQuery(a.search.Value())
	debounce := tea.Tick(listing.DebounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{controller: c, gen: gen}
	})
	return a, tea.Batch(cmd, debounce)
}

func (a *App) setCategory(id string) *listing.Fetch {
	a.search.SetValue("")
	return a.controller.SetCategory(id)
}

func (a *App) setCountry(code string) *listing.Fetch {
	if a.controller == nil {
		return nil
	}
	a.search.SetValue("")
	return a.controller.SetCountry(code)
}

func (a *App) shiftCategory(delta int) *listing.Fetch {
	n := len(listing.Categories)
	i := listing.CategoryIndex(a.controller.Filters().Category)
	next := ((i+delta)%n + n) % n
	return a.setCategory(listing.Categories[next].ID)
}

// viewNews renders the news screen
func (a *App) viewNews() string {
	if a.controller == nil {
		return ""
	}
	width := a.contentWidth()
	filters := a.controller.Filters()

	var sb strings.Builder
	sb.WriteString(" " + styles.Subtitle.Render(tagline))
	sb.WriteString("\n")
	sb.WriteString(" " + a.renderTabs(filters.Category))
	sb.WriteString("\n")
	sb.WriteString(a.renderSearchBar(filters, width))
	sb.WriteString("\n\n")

	if a.controller.Loading() {
		sb.WriteString(" " + a.spinner.View() + " Loading the latest news...")
		return sb.String()
	}

	if msg := a.controller.Message(); msg != "" {
		sb.WriteString(styles.ErrorBox.Width(width - 4).Render(icons.Warning.String() + " " + msg))
		sb.WriteString("\n")
	}
	if a.notice != "" {
		sb.WriteString(" " + styles.StatusWarning.Render(a.notice))
		sb.WriteString("\n")
	}
	if a.articles != nil {
		sb.WriteString(a.articles.View())
	}
	return sb.String()
}

func (a *App) renderTabs(current string) string {
	var tabs []string
	for _, c := range listing.Categories {
		if c.ID == current {
			tabs = append(tabs, styles.ActiveTab.Render(c.Name))
		} else {
			tabs = append(tabs, styles.Tab.Render(c.Name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderSearchBar(f listing.Filters, width int) string {
	label := styles.KeyStyle.Render(icons.Search.String() + " ")
	left := " " + label + a.search.View()

	country := f.Country
	if c, ok := listing.LookupCountry(f.Country); ok {
		country = c.Label()
	}
	modeIcon := icons.Grid
	if f.ViewMode == listing.ViewList {
		modeIcon = icons.List
	}
	right := styles.ArticleMeta.Render(country+" · "+modeIcon.String()+" "+f.ViewMode.Label()) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left + " " + right
	}
	return left + strings.Repeat(" ", gap) + right
}
