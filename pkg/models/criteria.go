package models

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownCriteria = errors.New("unknown criteria")

// Criteria selects the field two tasks are ranked by.
type Criteria int

const (
	// CriteriaNone ranks every pair of tasks as equal.
	CriteriaNone Criteria = iota
	// CriteriaTime ranks longer tasks higher.
	CriteriaTime
	// CriteriaTitle ranks titles later in the alphabet higher.
	CriteriaTitle
	// CriteriaLevel ranks higher priority levels higher.
	CriteriaLevel
)

var criteriaNames = map[Criteria]string{
	CriteriaNone:  "none",
	CriteriaTime:  "time",
	CriteriaTitle: "title",
	CriteriaLevel: "level",
}

func (c Criteria) String() string {
	if name, ok := criteriaNames[c]; ok {
		return name
	}
	return fmt.Sprintf("criteria(%d)", int(c))
}

// Next cycles time -> title -> level -> time. Anything else moves to time.
func (c Criteria) Next() Criteria {
	switch c {
	case CriteriaTime:
		return CriteriaTitle
	case CriteriaTitle:
		return CriteriaLevel
	default:
		return CriteriaTime
	}
}

// ParseCriteria accepts none, time, title or level in any case. Empty means none.
func ParseCriteria(s string) (Criteria, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CriteriaNone, nil
	}
	for c, name := range criteriaNames {
		if name == s {
			return c, nil
		}
	}
	return CriteriaNone, errors.Wrapf(ErrUnknownCriteria, "%q", s)
}

func (c Criteria) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Criteria) UnmarshalText(text []byte) error {
	parsed, err := ParseCriteria(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Compare returns a negative number when a ranks below b, zero when they rank
// the same and a positive number when a ranks above b.
func Compare(a, b Task, c Criteria) int {
	switch c {
	case CriteriaTime:
		if a.Equal(b) {
			return 0
		}
		return a.EstimatedMinutes - b.EstimatedMinutes
	case CriteriaTitle:
		if a.Equal(b) {
			return 0
		}
		return -strings.Compare(a.Title, b.Title)
	case CriteriaLevel:
		if a.Equal(b) {
			return 0
		}
		return int(a.PriorityLevel) - int(b.PriorityLevel)
	default:
		return 0
	}
}
