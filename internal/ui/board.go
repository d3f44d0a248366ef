package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskheap/internal/input"
	"github.com/nick-dorsch/taskheap/internal/logging"
	"github.com/nick-dorsch/taskheap/internal/session"
	"github.com/nick-dorsch/taskheap/internal/ui/components"
	"github.com/nick-dorsch/taskheap/pkg/models"
	"go.uber.org/zap"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldMinutes
	fieldCount
)

const dequeuedLimit = 8

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Width(13).Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// RefreshMsg asks the board to re-read the queue.
type RefreshMsg struct{}

// BoardModel is the interactive queue: an add-task form above the heap slots
// and the tasks dequeued so far.
type BoardModel struct {
	sessions  *session.Manager
	sessionID string
	log       *zap.Logger

	inputs []textinput.Model
	focus  int
	level  models.PriorityLevel

	heap     *components.HeapView
	dequeued *components.DequeuedTasks

	status   session.Status
	message  string
	failed   bool
	width    int
	height   int
	quitting bool
}

func NewBoardModel(sessions *session.Manager, sessionID string, log *zap.Logger) BoardModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 120
		inputs[i] = ti
	}
	inputs[fieldTitle].Placeholder = "Write the report"
	inputs[fieldDescription].Placeholder = "What needs doing"
	inputs[fieldMinutes].Placeholder = "30"
	inputs[fieldMinutes].CharLimit = 6
	inputs[fieldTitle].Focus()

	m := BoardModel{
		sessions:  sessions,
		sessionID: sessionID,
		log:       logging.OrNop(log).Named("tui"),
		inputs:    inputs,
		level:     models.PriorityOptional,
		heap:      components.NewHeapView(40, 10),
		dequeued:  components.NewDequeuedTasks(30),
	}
	m.heap.SetSize(40, 10)
	m.refresh()
	return m
}

func (m BoardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case RefreshMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil

		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil

		case "enter":
			m.submit()
			return m, nil

		case "ctrl+d":
			m.dequeue()
			return m, nil

		case "ctrl+r":
			m.reprioritize()
			return m, nil

		case "ctrl+l":
			m.level = nextLevel(m.level)
			return m, nil

		case "pgup", "pgdown":
			return m, m.heap.Update(msg)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *BoardModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m *BoardModel) submit() {
	t, err := input.ParseTask(
		m.inputs[fieldTitle].Value(),
		m.inputs[fieldDescription].Value(),
		m.inputs[fieldMinutes].Value(),
		m.level.String(),
	)
	if err != nil {
		m.report(err)
		return
	}

	if err := m.sessions.Enqueue(context.Background(), m.sessionID, t); err != nil {
		m.report(err)
		return
	}

	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.setFocus(fieldTitle)
	m.level = models.PriorityOptional
	m.notify(fmt.Sprintf("Enqueued %q", t.Title))
	m.refresh()
}

func (m *BoardModel) dequeue() {
	t, err := m.sessions.Dequeue(context.Background(), m.sessionID)
	if err != nil {
		m.report(err)
		return
	}

	t.MarkCompleted()
	m.dequeued.Add(t, dequeuedLimit)
	m.notify(fmt.Sprintf("Dequeued %q", t.Title))
	m.refresh()
}

func (m *BoardModel) reprioritize() {
	next := m.status.Criteria.Next()
	if err := m.sessions.Reprioritize(context.Background(), m.sessionID, next); err != nil {
		m.report(err)
		return
	}
	m.notify("Ordered by " + next.String())
	m.refresh()
}

func (m *BoardModel) refresh() {
	status, err := m.sessions.Status(m.sessionID)
	if err != nil {
		m.report(err)
		return
	}
	slots, err := m.sessions.Snapshot(m.sessionID)
	if err != nil {
		m.report(err)
		return
	}
	m.status = status
	m.heap.SetSlots(slots)
}

func (m *BoardModel) report(err error) {
	m.log.Debug("action failed", zap.Error(err))
	m.message = err.Error()
	m.failed = true
}

func (m *BoardModel) notify(msg string) {
	m.message = msg
	m.failed = false
}

func (m *BoardModel) resize() {
	heapWidth := m.width * 3 / 5
	if heapWidth < 20 {
		heapWidth = 20
	}
	heapHeight := m.height - 14
	if heapHeight < 3 {
		heapHeight = 3
	}
	m.heap.SetSize(heapWidth-4, heapHeight)
	m.dequeued.Width = m.width - heapWidth - 2
	if m.dequeued.Width < 20 {
		m.dequeued.Width = 20
	}
	for i := range m.inputs {
		m.inputs[i].Width = heapWidth - 16
	}
}

func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("taskheap · %s · %s · %d/%d",
		m.status.ID, m.status.Criteria, m.status.Size, m.status.Capacity)))
	s.WriteString("\n\n")

	labels := []string{"Title", "Description", "Minutes"}
	for i, ti := range m.inputs {
		s.WriteString(labelStyle.Render(labels[i]) + ti.View() + "\n")
	}
	s.WriteString(labelStyle.Render("Level") + m.level.String() + "\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.heap.View()),
		" ",
		m.dequeued.View(),
	))
	s.WriteString("\n")

	if m.message != "" {
		style := okStyle
		if m.failed {
			style = errorStyle
		}
		s.WriteString(style.Render(m.message) + "\n")
	}

	s.WriteString(helpStyle.Render("tab: next field • enter: enqueue • ctrl+d: dequeue • ctrl+r: criteria • ctrl+l: level • esc: quit"))
	s.WriteString("\n")

	return s.String()
}

func nextLevel(l models.PriorityLevel) models.PriorityLevel {
	levels := models.PriorityLevels()
	for i, candidate := range levels {
		if candidate == l {
			return levels[(i+1)%len(levels)]
		}
	}
	return levels[0]
}

// RunBoard runs the board on the given session until the user quits. onStart
// receives the program so other goroutines can Send RefreshMsg.
func RunBoard(sessions *session.Manager, sessionID string, log *zap.Logger, onStart func(*tea.Program)) error {
	p := tea.NewProgram(NewBoardModel(sessions, sessionID, log), tea.WithAltScreen())
	if onStart != nil {
		onStart(p)
	}
	_, err := p.Run()
	return err
}
