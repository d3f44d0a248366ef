package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nick-dorsch/taskheap/pkg/models"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m MenuModel, msg tea.Msg) (MenuModel, tea.Cmd) {
	model, cmd := m.Update(msg)
	return model.(MenuModel), cmd
}

func TestMenuNavigation(t *testing.T) {
	m := NewMenuModel(10, models.CriteriaTime)

	m, _ = update(m, runes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor 1 after 'j', got %d", m.cursor)
	}

	m, _ = update(m, runes("k"))
	m, _ = update(m, runes("k"))
	if m.cursor != len(menuItems)-1 {
		t.Errorf("expected cursor to wrap to the last item, got %d", m.cursor)
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 0 {
		t.Errorf("expected cursor to wrap to the first item, got %d", m.cursor)
	}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected() != "tui" {
		t.Errorf("expected selection 'tui', got %s", m.Selected())
	}
	if cmd == nil {
		t.Error("expected quit command after enter")
	}
}

func TestMenuDigitShortcut(t *testing.T) {
	m := NewMenuModel(10, models.CriteriaTime)

	m, cmd := update(m, runes("3"))
	if m.Selected() != "mcp" {
		t.Errorf("expected selection 'mcp', got %s", m.Selected())
	}
	if cmd == nil {
		t.Error("expected quit command after digit")
	}

	m = NewMenuModel(10, models.CriteriaTime)
	m, cmd = update(m, runes("9"))
	if m.Selected() != "" || cmd != nil {
		t.Errorf("expected out of range digit to be ignored, got %q", m.Selected())
	}
}

func TestMenuQuit(t *testing.T) {
	m, _ := update(NewMenuModel(10, models.CriteriaTime), runes("q"))
	if !m.quitting {
		t.Error("expected quitting true after 'q'")
	}
	if m.Selected() != "" {
		t.Errorf("expected no selection, got %s", m.Selected())
	}
	if m.View() != "" {
		t.Error("expected empty view when quitting")
	}
}

func TestMenuView(t *testing.T) {
	view := NewMenuModel(4, models.CriteriaLevel).View()

	if !strings.Contains(view, "> 1 tui") {
		t.Errorf("expected cursor on tui, got %q", view)
	}
	if !strings.Contains(view, "serve MCP tools on stdio") {
		t.Errorf("expected mcp description in view")
	}
	if !strings.Contains(view, "default queue: 4 slots, ordered by level") {
		t.Errorf("expected queue summary in view")
	}
}
