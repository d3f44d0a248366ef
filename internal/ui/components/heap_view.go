package components

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/nick-dorsch/taskheap/pkg/models"
)

// EmptySlot marks an unoccupied heap slot.
const EmptySlot = "—"

var (
	rootSlotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	slotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	emptySlotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// HeapView renders every queue slot in heap-array order, indented by tree depth.
type HeapView struct {
	viewport viewport.Model
	slots    []*models.Task
	ready    bool
	width    int
	height   int
}

func NewHeapView(width, height int) *HeapView {
	return &HeapView{
		viewport: viewport.New(width, height),
		width:    width,
		height:   height,
	}
}

func (h *HeapView) SetSize(width, height int) {
	h.width = width
	h.height = height
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !h.ready {
		h.viewport = viewport.New(vpWidth, height)
		h.ready = true
	} else {
		h.viewport.Width = vpWidth
		h.viewport.Height = height
	}
	h.updateContent()
}

func (h *HeapView) SetSlots(slots []*models.Task) {
	h.slots = slots
	h.updateContent()
}

func (h *HeapView) Slots() []*models.Task {
	return h.slots
}

func (h *HeapView) updateContent() {
	lines := make([]string, len(h.slots))
	for i, t := range h.slots {
		lines[i] = h.renderSlot(i, t)
	}
	h.viewport.SetContent(strings.Join(lines, "\n"))
}

func (h *HeapView) renderSlot(i int, t *models.Task) string {
	depth := bits.Len(uint(i+1)) - 1
	prefix := fmt.Sprintf("%s[%d] ", strings.Repeat("  ", depth), i)

	if t == nil {
		return emptySlotStyle.Render(prefix + EmptySlot)
	}

	line := fmt.Sprintf("%s%s (%s, %d min)", prefix, t.Title, t.PriorityLevel, t.EstimatedMinutes)
	if w := h.viewport.Width; w > 0 {
		line = runewidth.Truncate(line, w, "…")
	}

	if i == 0 {
		return rootSlotStyle.Render(line)
	}
	return slotStyle.Render(line)
}

func (h *HeapView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.viewport, cmd = h.viewport.Update(msg)
	return cmd
}

func (h *HeapView) View() string {
	if !h.ready {
		return ""
	}

	if h.viewport.TotalLineCount() <= h.viewport.Height {
		return h.viewport.View()
	}

	height := h.viewport.Height
	handlePos := int(float64(height-1) * h.viewport.ScrollPercent())

	var sb strings.Builder
	for i := 0; i < height; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < height-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, h.viewport.View(), sb.String())
}
