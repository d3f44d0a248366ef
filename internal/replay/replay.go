// Package replay runs scripted queue sessions from YAML files.
package replay

import (
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/nick-dorsch/taskheap/internal/input"
	"github.com/nick-dorsch/taskheap/internal/logging"
	"github.com/nick-dorsch/taskheap/internal/session"
	"github.com/nick-dorsch/taskheap/pkg/models"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	OpEnqueue      = "enqueue"
	OpDequeue      = "dequeue"
	OpPeek         = "peek"
	OpReprioritize = "reprioritize"
	OpSnapshot     = "snapshot"
)

var ErrUnknownOp = errors.New("unknown op")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Script is a queue setup followed by the operations to run against it.
type Script struct {
	Capacity int    `yaml:"capacity"`
	Criteria string `yaml:"criteria"`
	Steps    []Step `yaml:"steps"`
}

type Step struct {
	Op          string `yaml:"op"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
	Minutes     *int   `yaml:"minutes,omitempty"`
	Level       string `yaml:"level,omitempty"`
	Criteria    string `yaml:"criteria,omitempty"`
}

type StepResult struct {
	Index    int            `json:"index"`
	Op       string         `json:"op"`
	Task     *models.Task   `json:"task,omitempty"`
	Snapshot []*models.Task `json:"snapshot,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type Result struct {
	Capacity int             `json:"capacity"`
	Criteria models.Criteria `json:"criteria"`
	Steps    []StepResult    `json:"steps"`
	Final    []*models.Task  `json:"final"`
}

// Failed counts the steps that recorded an error.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Error != "" {
			n++
		}
	}
	return n
}

// Load decodes a script. Unknown keys are rejected.
func Load(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode script")
	}
	return &s, nil
}

// Run executes every step against a fresh queue. A failing step is recorded
// in its result and the run continues; only setup errors and cancellation
// abort.
func Run(ctx context.Context, s *Script, log *zap.Logger) (*Result, error) {
	log = logging.OrNop(log).Named("replay")

	criteria, err := input.ParseCriteria(s.Criteria)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(s.Capacity, criteria, log)
	if err != nil {
		return nil, err
	}

	res := &Result{Capacity: s.Capacity, Criteria: criteria, Steps: make([]StepResult, 0, len(s.Steps))}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}

		sr := runStep(ctx, sessions, step)
		sr.Index = i
		if sr.Error != "" {
			log.Debug("step failed", zap.Int("step", i), zap.String("op", step.Op), zap.String("error", sr.Error))
		}
		res.Steps = append(res.Steps, sr)
	}

	if res.Final, err = sessions.Snapshot(session.DefaultID); err != nil {
		return nil, err
	}
	status, err := sessions.Status(session.DefaultID)
	if err != nil {
		return nil, err
	}
	res.Criteria = status.Criteria

	log.Info("replay finished", zap.Int("steps", len(res.Steps)), zap.Int("failed", res.Failed()))
	return res, nil
}

func runStep(ctx context.Context, sessions *session.Manager, step Step) StepResult {
	sr := StepResult{Op: step.Op}
	fail := func(err error) StepResult {
		sr.Error = err.Error()
		return sr
	}

	switch strings.ToLower(step.Op) {
	case OpEnqueue:
		minutes := -1
		if step.Minutes != nil {
			minutes = *step.Minutes
		}
		t, err := input.BuildTask(step.Title, step.Description, minutes, step.Level)
		if err != nil {
			return fail(err)
		}
		if err := sessions.Enqueue(ctx, session.DefaultID, t); err != nil {
			return fail(err)
		}
		sr.Task = &t

	case OpDequeue, OpPeek:
		var t models.Task
		var err error
		if strings.EqualFold(step.Op, OpDequeue) {
			t, err = sessions.Dequeue(ctx, session.DefaultID)
		} else {
			t, err = sessions.PeekBest(session.DefaultID)
		}
		if err != nil {
			return fail(err)
		}
		sr.Task = &t

	case OpReprioritize:
		c, err := input.ParseCriteria(step.Criteria)
		if err != nil {
			return fail(err)
		}
		if err := sessions.Reprioritize(ctx, session.DefaultID, c); err != nil {
			return fail(err)
		}

	case OpSnapshot:
		slots, err := sessions.Snapshot(session.DefaultID)
		if err != nil {
			return fail(err)
		}
		sr.Snapshot = slots

	default:
		return fail(errors.Wrapf(ErrUnknownOp, "%q", step.Op))
	}

	return sr
}

// WriteText renders one line per step followed by the final heap.
func WriteText(w io.Writer, r *Result) error {
	for _, s := range r.Steps {
		line := fmt.Sprintf("%3d %-12s ", s.Index, s.Op)
		switch {
		case s.Error != "":
			line += "error: " + s.Error
		case s.Task != nil:
			line += s.Task.String()
		case s.Snapshot != nil:
			line += formatSlots(s.Snapshot)
		default:
			line += "ok"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "final (%s): %s\n", r.Criteria, formatSlots(r.Final))
	return err
}

// WriteJSON writes the result as JSON, indented when prettyPrint is set.
func WriteJSON(w io.Writer, r *Result, prettyPrint bool) error {
	body, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	if prettyPrint {
		body = pretty.Pretty(body)
	} else {
		body = append(body, '\n')
	}
	_, err = w.Write(body)
	return err
}

func formatSlots(slots []*models.Task) string {
	names := make([]string, len(slots))
	for i, t := range slots {
		if t == nil {
			names[i] = "—"
		} else {
			names[i] = t.Title
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}
