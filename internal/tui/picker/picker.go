// ABOUTME: Country picker as a bubbletea model
// ABOUTME: Wraps a huh select form themed to match the rest of the TUI

package picker

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sawant8123/news-api-portal/internal/listing"
	"github.com/sawant8123/news-api-portal/internal/tui/icons"
	"github.com/sawant8123/news-api-portal/internal/tui/styles"
)

// SelectedMsg is sent when a country is chosen
type SelectedMsg struct {
	Code string
}

// CancelledMsg is sent when the picker is dismissed
type CancelledMsg struct{}

// Picker lets the user choose the headline country
type Picker struct {
	form    *huh.Form
	code    string
	initial string
	width   int
	done    bool
}

// createTheme returns a huh theme using the shared palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(styles.Muted).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(styles.Muted)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(styles.Primary).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(styles.Text)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)

	return t
}

// New creates a picker with current preselected
func New(current string) *Picker {
	p := &Picker{code: current, initial: current}

	var options []huh.Option[string]
	for _, c := range listing.Countries {
		options = append(options, huh.NewOption(c.Label(), c.Code).Selected(c.Code == current))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(icons.Globe.String() + " Country").
				Description("Use ↑/↓ to select, Enter to confirm, Esc to cancel").
				Options(options...).
				Height(len(options) + 2).
				Value(&p.code),
		),
	).WithTheme(createTheme()).WithShowHelp(false)

	return p
}

// Init implements tea.Model
func (p *Picker) Init() tea.Cmd {
	return p.form.Init()
}

// Update implements tea.Model
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.done {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			p.done = true
			return p, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateCompleted:
		p.done = true
		code := p.code
		return p, func() tea.Msg { return SelectedMsg{Code: code} }
	case huh.StateAborted:
		p.done = true
		return p, func() tea.Msg { return CancelledMsg{} }
	}

	return p, cmd
}

// Value returns the currently highlighted country code
func (p *Picker) Value() string {
	return p.code
}

// View implements tea.Model
func (p *Picker) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Select a country"))
	sb.WriteString("\n")
	if c, ok := listing.LookupCountry(p.initial); ok {
		sb.WriteString(styles.Subtitle.Render("Currently showing " + c.Label()))
		sb.WriteString("\n\n")
	}
	sb.WriteString(p.form.View())
	return sb.String()
}
