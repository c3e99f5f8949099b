// ABOUTME: Tests for the country picker
// ABOUTME: Verifies preselection, rendering and cancellation

package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNew_PreselectsCurrent(t *testing.T) {
	p := New("de")
	if p.Value() != "de" {
		t.Errorf("expected de preselected, got %q", p.Value())
	}
}

func TestView_ListsCountries(t *testing.T) {
	p := New("us")
	p.Init()

	view := p.View()
	for _, name := range []string{"Select a country", "United States", "Currently showing"} {
		if !strings.Contains(view, name) {
			t.Errorf("expected view to contain %q", name)
		}
	}
}

func TestUpdate_EscCancels(t *testing.T) {
	p := New("us")
	p.Init()

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg")
	}

	// Further input is ignored once dismissed
	if _, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command after cancel")
	}
}
