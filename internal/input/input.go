// Package input turns raw user input into task records. Every surface that
// accepts tasks from people (TUI form, HTTP, MCP, replay scripts) goes through it.
package input

import (
	"math"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/nick-dorsch/taskheap/pkg/models"
	"github.com/pkg/errors"
)

var (
	ErrBlankTitle       = errors.New("title must not be blank")
	ErrBlankDescription = errors.New("description must not be blank")
	ErrInvalidMinutes   = errors.New("estimated minutes must be a non-negative integer")
)

// BuildTask validates the fields and returns an uncompleted task.
func BuildTask(title, description string, minutes int, level string) (models.Task, error) {
	if govalidator.IsNull(strings.TrimSpace(title)) {
		return models.Task{}, ErrBlankTitle
	}
	if govalidator.IsNull(strings.TrimSpace(description)) {
		return models.Task{}, ErrBlankDescription
	}
	if minutes < 0 {
		return models.Task{}, errors.Wrapf(ErrInvalidMinutes, "got %d", minutes)
	}

	priority, err := models.ParsePriorityLevel(level)
	if err != nil {
		return models.Task{}, err
	}

	return models.Task{
		Title:            title,
		Description:      description,
		EstimatedMinutes: minutes,
		PriorityLevel:    priority,
	}, nil
}

// ParseTask is BuildTask with the minutes still in text form.
func ParseTask(title, description, minutes, level string) (models.Task, error) {
	n, err := ParseMinutes(minutes)
	if err != nil {
		return models.Task{}, err
	}
	return BuildTask(title, description, n, level)
}

// ParseMinutes accepts integer text only.
func ParseMinutes(text string) (int, error) {
	text = strings.TrimSpace(text)
	if !govalidator.IsInt(text) || govalidator.IsNull(text) {
		return 0, errors.Wrapf(ErrInvalidMinutes, "%q", text)
	}

	n, err := govalidator.ToInt(text)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidMinutes, "%q", text)
	}
	return int(n), nil
}

// DefaultCriteria orders new sessions created without explicit criteria.
const DefaultCriteria = models.CriteriaTime

// ParseCriteria validates criteria typed by a user.
func ParseCriteria(text string) (models.Criteria, error) {
	return models.ParseCriteria(text)
}

// ParseSessionCriteria is ParseCriteria for new sessions: blank text means
// DefaultCriteria rather than none.
func ParseSessionCriteria(text string) (models.Criteria, error) {
	if govalidator.IsNull(strings.TrimSpace(text)) {
		return DefaultCriteria, nil
	}
	return models.ParseCriteria(text)
}

// WholeMinutes converts a JSON number to minutes, rejecting fractions.
func WholeMinutes(v float64) (int, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, errors.Wrapf(ErrInvalidMinutes, "%v is not a whole number", v)
	}
	return int(v), nil
}

// IsValidationError reports whether err came from rejected user input rather
// than from the queue.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrBlankTitle) ||
		errors.Is(err, ErrBlankDescription) ||
		errors.Is(err, ErrInvalidMinutes) ||
		errors.Is(err, models.ErrUnknownPriorityLevel) ||
		errors.Is(err, models.ErrUnknownCriteria)
}
