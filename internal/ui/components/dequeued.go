package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskheap/pkg/models"
)

var (
	dequeuedBoxStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("42")).
				Padding(0, 1)

	dequeuedHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

// DequeuedTasks keeps the most recently dequeued tasks, oldest first.
type DequeuedTasks struct {
	History []models.Task
	Width   int
	Title   string
}

func NewDequeuedTasks(width int) *DequeuedTasks {
	return &DequeuedTasks{
		History: make([]models.Task, 0),
		Width:   width,
		Title:   "Dequeued",
	}
}

// Add appends t, keeping at most limit entries. A limit <= 0 keeps everything.
func (d *DequeuedTasks) Add(t models.Task, limit int) {
	d.History = append(d.History, t)
	if limit > 0 && len(d.History) > limit {
		d.History = d.History[len(d.History)-limit:]
	}
}

func (d *DequeuedTasks) View() string {
	content := placeholderStyle.Render("Nothing dequeued yet")
	if len(d.History) > 0 {
		content = d.renderBox()
	}

	if d.Title == "" {
		return content
	}
	return dequeuedHeaderStyle.Render(d.Title) + "\n" + content
}

func (d *DequeuedTasks) renderBox() string {
	innerWidth := d.Width - 4
	if innerWidth < 0 {
		innerWidth = 0
	}
	nameWidth := innerWidth - 2
	if nameWidth < 0 {
		nameWidth = 0
	}

	var lines []string
	for _, t := range d.History {
		icon := "→"
		if t.Completed {
			icon = "✓"
		}

		wrapped := lipgloss.NewStyle().Width(nameWidth).Render(t.Title)
		for i, line := range strings.Split(wrapped, "\n") {
			if i == 0 {
				lines = append(lines, fmt.Sprintf("%s %s", icon, line))
			} else {
				lines = append(lines, fmt.Sprintf("  %s", line))
			}
		}
	}

	return dequeuedBoxStyle.Width(d.Width).Render(strings.Join(lines, "\n"))
}
