package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/taskheap/pkg/models"
)

func task(title string, minutes int) *models.Task {
	return &models.Task{Title: title, Description: "d", EstimatedMinutes: minutes, PriorityLevel: models.PriorityHigh}
}

func TestDequeuedTasks(t *testing.T) {
	d := NewDequeuedTasks(80)
	d.Title = "History"

	done := *task("task1", 1)
	done.MarkCompleted()
	d.Add(done, 5)
	d.Add(*task("task2", 2), 5)

	view := d.View()

	if !strings.Contains(view, "History") {
		t.Errorf("expected view to contain Title")
	}
	if !strings.Contains(view, "✓ task1") {
		t.Errorf("expected view to contain ✓ task1")
	}
	if !strings.Contains(view, "→ task2") {
		t.Errorf("expected view to contain → task2")
	}
}

func TestDequeuedTasksChronologicalOrder(t *testing.T) {
	d := NewDequeuedTasks(40)
	d.Add(*task("oldest", 1), 10)
	d.Add(*task("middle", 1), 10)
	d.Add(*task("newest", 1), 10)

	view := d.View()
	oldestIdx := strings.Index(view, "oldest")
	middleIdx := strings.Index(view, "middle")
	newestIdx := strings.Index(view, "newest")

	if oldestIdx == -1 || middleIdx == -1 || newestIdx == -1 {
		t.Errorf("expected all tasks to be present")
	}
	if !(oldestIdx < middleIdx && middleIdx < newestIdx) {
		t.Errorf("expected chronological order (oldest first), got indices: %d, %d, %d", oldestIdx, middleIdx, newestIdx)
	}
}

func TestDequeuedTasksLimit(t *testing.T) {
	d := NewDequeuedTasks(40)
	for _, title := range []string{"a", "b", "c", "d"} {
		d.Add(*task(title, 1), 2)
	}

	if len(d.History) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(d.History))
	}
	if d.History[0].Title != "c" || d.History[1].Title != "d" {
		t.Errorf("expected the newest entries to survive, got %v", d.History)
	}
}

func TestDequeuedTasksEmptyState(t *testing.T) {
	d := NewDequeuedTasks(80)
	if !strings.Contains(d.View(), "Nothing dequeued yet") {
		t.Errorf("expected placeholder when no tasks")
	}

	d.Add(*task("task1", 1), 5)
	if strings.Contains(d.View(), "Nothing dequeued yet") {
		t.Errorf("expected placeholder to disappear")
	}
}

func TestDequeuedTasksWidth(t *testing.T) {
	width := 20
	d := NewDequeuedTasks(width)
	d.Add(*task("task1", 1), 5)

	for _, line := range strings.Split(d.View(), "\n") {
		if line == "" {
			continue
		}
		if w := lipgloss.Width(line); w > width {
			t.Errorf("line too wide: %d > %d. Line: %q", w, width, line)
		}
	}
}

func TestHeapView(t *testing.T) {
	h := NewHeapView(60, 10)
	h.SetSize(60, 10)
	h.SetSlots([]*models.Task{task("root", 10), task("left", 5), nil})

	view := h.View()
	lines := strings.Split(view, "\n")

	if !strings.Contains(lines[0], "[0] root (HIGH, 10 min)") {
		t.Errorf("expected root in first line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "  [1] left") {
		t.Errorf("expected indented left child, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[2] "+EmptySlot) {
		t.Errorf("expected empty marker in third line, got %q", lines[2])
	}
}

func TestHeapViewNotReady(t *testing.T) {
	h := NewHeapView(20, 5)
	h.SetSlots([]*models.Task{task("a", 1)})
	if h.View() != "" {
		t.Errorf("expected empty view before SetSize")
	}
}

func TestHeapViewTruncates(t *testing.T) {
	width := 20
	h := NewHeapView(width, 5)
	h.SetSize(width, 5)
	h.SetSlots([]*models.Task{task(strings.Repeat("long title ", 5), 1)})

	for i, line := range strings.Split(h.View(), "\n") {
		if w := lipgloss.Width(line); w > width {
			t.Errorf("line %d is too wide: %d > %d. Content: %q", i, w, width, line)
		}
	}
	if !strings.Contains(h.View(), "…") {
		t.Errorf("expected truncation marker")
	}
}

func TestHeapViewScrollbar(t *testing.T) {
	h := NewHeapView(20, 3)
	h.SetSize(20, 3)
	h.SetSlots(make([]*models.Task, 10))

	view := h.View()
	if !strings.Contains(view, "┃") {
		t.Errorf("expected view to contain scrollbar handle '┃'")
	}

	h.SetSlots(make([]*models.Task, 2))
	if strings.Contains(h.View(), "┃") {
		t.Errorf("expected no scrollbar when slots fit")
	}
}
