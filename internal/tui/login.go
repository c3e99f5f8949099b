// ABOUTME: Login screen of the TUI
// ABOUTME: Starts Google sign-in or accepts a pasted ID token

package tui

import (
	"context"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sawant8123/news-api-portal/internal/auth"
	"github.com/sawant8123/news-api-portal/internal/tui/icons"
	"github.com/sawant8123/news-api-portal/internal/tui/styles"
)

const loginPanelWidth = 56

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.loginBusy {
		if msg.String() == "esc" && a.cancelLogin != nil {
			a.cancelLogin()
		}
		return a, nil
	}

	if a.pasting {
		switch msg.String() {
		case "esc":
			a.pasting = false
			a.tokenInput.Blur()
			return a, nil
		case "enter":
			token := strings.TrimSpace(a.tokenInput.Value())
			a.pasting = false
			a.tokenInput.Blur()
			a.tokenInput.SetValue("")
			return a, a.startLogin(func(ctx context.Context) tea.Msg {
				s, err := a.deps.Flow.CompleteLogin(ctx, token)
				return loginDoneMsg{session: s, err: err}
			})
		}
		var cmd tea.Cmd
		a.tokenInput, cmd = a.tokenInput.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "enter":
		return a, a.startLogin(func(ctx context.Context) tea.Msg {
			s, err := a.deps.Flow.SignIn(ctx)
			return loginDoneMsg{session: s, err: err}
		})
	case "t":
		a.pasting = true
		a.loginErr = ""
		return a, a.tokenInput.Focus()
	}
	return a, nil
}

// startLogin runs a sign-in attempt that Esc can cancel
func (a *App) startLogin(run func(ctx context.Context) tea.Msg) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelLogin = cancel
	a.loginBusy = true
	a.loginErr = ""

	return tea.Batch(func() tea.Msg { return run(ctx) }, a.spinner.Tick)
}

func (a *App) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if a.cancelLogin != nil {
		a.cancelLogin()
		a.cancelLogin = nil
	}
	a.loginBusy = false

	if auth.Cancelled(msg.err) {
		slog.Info("Sign-in cancelled")
		a.loginErr = ""
		return a, nil
	}
	if msg.err != nil {
		slog.Warn("Sign-in failed", "error", msg.err)
		a.loginErr = auth.UserMessage(msg.err)
		return a, nil
	}

	a.userName = msg.session.Name()
	a.loginErr = ""
	a.screen = ScreenNews
	return a, a.startNews()
}

// viewLogin renders the login panel centered in the frame
func (a *App) viewLogin() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Welcome Back!"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Sign in with your Google account to continue"))
	sb.WriteString("\n\n")

	switch {
	case a.loginBusy:
		sb.WriteString(a.spinner.View() + " Waiting for Google sign-in in your browser...")
	case a.pasting:
		sb.WriteString("Paste a Google ID token and press Enter:\n")
		sb.WriteString(a.tokenInput.View())
	default:
		sb.WriteString(styles.KeyStyle.Render("Enter") + " " + icons.Login.String() + " Sign in with Google\n")
		sb.WriteString(styles.KeyStyle.Render("t") + "     Paste an ID token")
	}

	if a.loginErr != "" {
		sb.WriteString("\n\n")
		sb.WriteString(styles.ErrorBox.Width(loginPanelWidth - 6).Render(a.loginErr))
	}

	panel := styles.ActivePanel.Width(loginPanelWidth).Padding(1, 2).Render(sb.String())
	if a.width == 0 || a.height == 0 {
		return panel
	}
	return lipgloss.Place(a.contentWidth(), a.contentHeight(), lipgloss.Center, lipgloss.Center, panel)
}
