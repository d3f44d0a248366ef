package session

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/nick-dorsch/taskheap/internal/logging"
	"github.com/nick-dorsch/taskheap/internal/queue"
	"github.com/nick-dorsch/taskheap/pkg/models"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	"go.uber.org/zap"
)

// DefaultID names the session every surface falls back to.
const DefaultID = "default"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrDefaultSession  = errors.New("the default session cannot be deleted")
)

type Status struct {
	ID       string          `json:"id"`
	Size     int             `json:"size"`
	Capacity int             `json:"capacity"`
	Criteria models.Criteria `json:"criteria"`
}

// Manager provides thread-safe access to task queues keyed by session ID.
type Manager struct {
	mu     sync.RWMutex
	queues map[string]*queue.TaskQueue
	log    *zap.Logger

	onChange   func(ctx context.Context, id string)
	onChangeMu sync.RWMutex
}

// NewManager creates a manager whose default session has the given capacity
// and criteria.
func NewManager(capacity int, criteria models.Criteria, log *zap.Logger) (*Manager, error) {
	q, err := queue.New(capacity, criteria)
	if err != nil {
		return nil, err
	}

	return &Manager{
		queues: map[string]*queue.TaskQueue{DefaultID: q},
		log:    logging.OrNop(log).Named("session"),
	}, nil
}

func (m *Manager) SetOnChange(fn func(ctx context.Context, id string)) {
	m.onChangeMu.Lock()
	defer m.onChangeMu.Unlock()
	m.onChange = fn
}

func (m *Manager) triggerChange(ctx context.Context, id string) {
	m.onChangeMu.RLock()
	fn := m.onChange
	m.onChangeMu.RUnlock()

	if fn != nil {
		fn(ctx, id)
	}
}

// Create adds a new session with its own queue and returns its ID.
func (m *Manager) Create(ctx context.Context, capacity int, criteria models.Criteria) (string, error) {
	q, err := queue.New(capacity, criteria)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()

	m.mu.Lock()
	m.queues[id] = q
	m.mu.Unlock()

	m.log.Info("session created", zap.String("session", id), zap.Int("capacity", capacity), zap.Stringer("criteria", criteria))
	m.triggerChange(ctx, id)
	return id, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == DefaultID {
		return ErrDefaultSession
	}

	m.mu.Lock()
	_, ok := m.queues[id]
	delete(m.queues, id)
	m.mu.Unlock()

	if !ok {
		return errors.Wrapf(ErrSessionNotFound, "%q", id)
	}

	m.log.Info("session deleted", zap.String("session", id))
	m.triggerChange(ctx, id)
	return nil
}

// Queue returns the queue behind a session. An empty id means DefaultID.
func (m *Manager) Queue(id string) (*queue.TaskQueue, error) {
	id = normalize(id)

	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.queues[id]
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "%q", id)
	}
	return q, nil
}

// List returns the status of every session, default first, then by ID.
func (m *Manager) List() []Status {
	m.mu.RLock()
	ids := make([]string, 0, len(m.queues))
	for id := range m.queues {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		if ids[i] == DefaultID || ids[j] == DefaultID {
			return ids[i] == DefaultID
		}
		return ids[i] < ids[j]
	})

	statuses := make([]Status, 0, len(ids))
	for _, id := range ids {
		if s, err := m.Status(id); err == nil {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

func (m *Manager) Status(id string) (Status, error) {
	q, err := m.Queue(id)
	if err != nil {
		return Status{}, err
	}
	return Status{ID: normalize(id), Size: q.Size(), Capacity: q.Capacity(), Criteria: q.Criteria()}, nil
}

func (m *Manager) Enqueue(ctx context.Context, id string, t models.Task) error {
	id = normalize(id)
	q, err := m.Queue(id)
	if err != nil {
		return err
	}

	if err := q.Enqueue(t); err != nil {
		m.log.Debug("enqueue rejected", zap.String("session", id), zap.String("title", t.Title), zap.Error(err))
		return err
	}

	m.log.Info("task enqueued", zap.String("session", id), zap.String("title", t.Title), zap.Int("size", q.Size()))
	m.triggerChange(ctx, id)
	return nil
}

func (m *Manager) PeekBest(id string) (models.Task, error) {
	q, err := m.Queue(id)
	if err != nil {
		return models.Task{}, err
	}
	return q.PeekBest()
}

func (m *Manager) Dequeue(ctx context.Context, id string) (models.Task, error) {
	id = normalize(id)
	q, err := m.Queue(id)
	if err != nil {
		return models.Task{}, err
	}

	t, err := q.Dequeue()
	if err != nil {
		return models.Task{}, err
	}

	m.log.Info("task dequeued", zap.String("session", id), zap.String("title", t.Title), zap.Int("size", q.Size()))
	m.triggerChange(ctx, id)
	return t, nil
}

// Reprioritize switches a session's criteria and logs how many heap slots
// changed places.
func (m *Manager) Reprioritize(ctx context.Context, id string, criteria models.Criteria) error {
	id = normalize(id)
	q, err := m.Queue(id)
	if err != nil {
		return err
	}

	before, after := q.Reorder(criteria)

	fields := []zap.Field{zap.String("session", id), zap.Stringer("criteria", criteria)}
	if changed, err := changedSlots(before, after); err != nil {
		m.log.Warn("failed to diff heap slots", append(fields, zap.Error(err))...)
	} else {
		fields = append(fields, zap.Int("slots_changed", changed))
	}
	m.log.Info("session reprioritized", fields...)

	m.triggerChange(ctx, id)
	return nil
}

func (m *Manager) Snapshot(id string) ([]*models.Task, error) {
	q, err := m.Queue(id)
	if err != nil {
		return nil, err
	}
	return q.Snapshot(), nil
}

// changedSlots counts heap slots whose task differs between two snapshots.
func changedSlots(before, after []*models.Task) (int, error) {
	changes, err := diff.Diff(slotKeys(before), slotKeys(after))
	if err != nil {
		return 0, err
	}
	return len(changes), nil
}

// slotKeys keys occupied slots by index so the diff is positional.
func slotKeys(slots []*models.Task) map[int]string {
	keys := make(map[int]string, len(slots))
	for i, t := range slots {
		if t != nil {
			keys[i] = t.String()
		}
	}
	return keys
}

func normalize(id string) string {
	if id == "" {
		return DefaultID
	}
	return id
}
