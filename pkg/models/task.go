package models

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownPriorityLevel = errors.New("unknown priority level")

// PriorityLevel is ordered from least to most important.
type PriorityLevel int

const (
	PriorityOptional PriorityLevel = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = [...]string{"OPTIONAL", "LOW", "MEDIUM", "HIGH", "URGENT"}

// PriorityLevels returns every level, lowest first.
func PriorityLevels() []PriorityLevel {
	return []PriorityLevel{PriorityOptional, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

func (p PriorityLevel) String() string {
	if p < 0 || int(p) >= len(priorityNames) {
		return fmt.Sprintf("PriorityLevel(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriorityLevel is case-insensitive. An empty string yields PriorityOptional.
func ParsePriorityLevel(s string) (PriorityLevel, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PriorityOptional, nil
	}
	for i, name := range priorityNames {
		if name == s {
			return PriorityLevel(i), nil
		}
	}
	return PriorityOptional, errors.Wrapf(ErrUnknownPriorityLevel, "%q", s)
}

func (p PriorityLevel) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PriorityLevel) UnmarshalText(text []byte) error {
	level, err := ParsePriorityLevel(string(text))
	if err != nil {
		return err
	}
	*p = level
	return nil
}

type Task struct {
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	PriorityLevel    PriorityLevel `json:"priority_level"`
	Completed        bool          `json:"completed"`
}

// MarkCompleted flags the task as done. Completed tasks cannot be enqueued.
func (t *Task) MarkCompleted() {
	t.Completed = true
}

// Equal reports structural equality. The completed flag is not compared.
func (t Task) Equal(other Task) bool {
	return t.Title == other.Title &&
		t.Description == other.Description &&
		t.PriorityLevel == other.PriorityLevel &&
		t.EstimatedMinutes == other.EstimatedMinutes
}

// CompareTo is Compare with t as the left operand.
func (t Task) CompareTo(other Task, c Criteria) int {
	return Compare(t, other, c)
}

func (t Task) String() string {
	return fmt.Sprintf("%s: %s(%s), ETA %d minutes", t.Title, t.Description, t.PriorityLevel, t.EstimatedMinutes)
}
