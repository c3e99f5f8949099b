// ABOUTME: Header and footer frame drawn around every screen
// ABOUTME: Shows branding, the signed-in user and the shortcuts of the current screen

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sawant8123/news-api-portal/internal/tui/icons"
	"github.com/sawant8123/news-api-portal/internal/tui/styles"
)

// frameWidth guards against zero/small width before WindowSizeMsg is received
func (a *App) frameWidth() int {
	return max(minTerminalWidth, a.width)
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := " " + icons.App.String() + " " + titleStyle.Render("NEWS PORTAL") + " "

	rightText := ""
	if a.userName != "" && a.screen != ScreenLogin {
		rightText = " " + contextStyle.Render(icons.User.String()+" "+a.userName) + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╭─ and ─╮
	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"

	return borderStyle.Render(header)
}

// shortcuts lists the key hints for the current screen
func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenLogin:
		switch {
		case a.loginBusy:
			return []string{"Esc Cancel"}
		case a.pasting:
			return []string{"Enter Submit", "Esc Back"}
		}
		return []string{"Enter Sign in", "t Paste token", "q Quit"}
	case ScreenNews:
		if a.searching {
			return []string{"Enter Search", "Esc Done"}
		}
		return []string{"/ Search", "c Country", "v View", "r Refresh", "←→ Category", "L Logout", "q Quit"}
	case ScreenPicker:
		return []string{"↑↓ Select", "Enter Confirm", "Esc Cancel"}
	}
	return nil
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()
	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ")
	leftWidth := lipgloss.Width(" " + strings.Join(shortcuts, "  "))

	// Last successful load, dropped when it does not fit
	rightText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenNews {
		status := "Updated " + humanize.RelTime(a.lastUpdate, a.now(), "ago", "from now") + " "
		if leftWidth+lipgloss.Width(status)+4 <= width {
			rightText = statusStyle.Render(status)
		}
	}

	fillWidth := max(0, width-4-leftWidth-lipgloss.Width(rightText)) // -4 for ╰─ and ─╯
	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"

	return borderStyle.Render(footer)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}
