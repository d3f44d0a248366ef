package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskheap/pkg/models"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	descriptionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)


const logo = `
                 ┌────┐
                 │ 42 │
            ┌────┴────┴────┐
          ┌─┴──┐         ┌─┴──┐
          │ 17 │         │ 23 │
          └────┘         └────┘
  _            _    _
 | |_ __ _ ___| | _| |__   ___  __ _ _ __
 | __/ _' / __| |/ / '_ \ / _ \/ _' | '_ \
 | || (_| \__ \   <| | | |  __/ (_| | |_) |
  \__\__,_|___/_|\_\_| |_|\___|\__,_| .__/
                                   |_|
`

type menuItem struct {
	command     string
	description string
}

var menuItems = []menuItem{
	{"tui", "manage the queue here"},
	{"web", "serve the HTTP API"},
	{"mcp", "serve MCP tools on stdio"},
	{"init", "write the default config"},
}

// MenuModel picks the mode to run. It shows the queue every mode starts with.
type MenuModel struct {
	capacity int
	criteria models.Criteria
	cursor   int
	selected string
	quitting bool
}

func NewMenuModel(capacity int, criteria models.Criteria) MenuModel {
	return MenuModel{capacity: capacity, criteria: criteria}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.cursor = (m.cursor + len(menuItems) - 1) % len(menuItems)

	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(menuItems)

	case "enter":
		m.selected = menuItems[m.cursor].command
		return m, tea.Quit

	default:
		// 1-9 pick an item directly.
		if len(k) == 1 && k[0] >= '1' && int(k[0]-'1') < len(menuItems) {
			m.cursor = int(k[0] - '1')
			m.selected = menuItems[m.cursor].command
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n")
	s.WriteString(descriptionStyle.Render(fmt.Sprintf("default queue: %d slots, ordered by %s", m.capacity, m.criteria)))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		line := fmt.Sprintf("%d %-5s", i+1, item.command)
		if m.cursor == i {
			s.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			s.WriteString(itemStyle.Render("  " + line))
		}
		s.WriteString(" " + descriptionStyle.Render(item.description) + "\n")
	}

	s.WriteString("\n(j/k or arrows to move, enter or 1-4 to select, q to quit)\n")

	return s.String()
}

func (m MenuModel) Selected() string {
	return m.selected
}

// RunMenu returns the chosen command, or "" when the user quits.
func RunMenu(capacity int, criteria models.Criteria) (string, error) {
	finalModel, err := tea.NewProgram(NewMenuModel(capacity, criteria)).Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
