// Package queue implements a fixed-capacity max-heap of tasks whose ordering
// criteria can be switched at runtime.
package queue

import (
	"sync"

	"github.com/nick-dorsch/taskheap/pkg/models"
	"github.com/pkg/errors"
)

// TaskQueue is an array-backed binary max-heap. For every occupied slot i > 0,
// heap[i] never outranks heap[(i-1)/2] under the active criteria.
type TaskQueue struct {
	mu       sync.Mutex
	heap     []models.Task
	size     int
	criteria models.Criteria
}

// New creates an empty queue holding at most capacity tasks.
func New(capacity int, criteria models.Criteria) (*TaskQueue, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}

	return &TaskQueue{
		heap:     make([]models.Task, capacity),
		criteria: criteria,
	}, nil
}

func (q *TaskQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *TaskQueue) Capacity() int {
	return len(q.heap)
}

func (q *TaskQueue) IsEmpty() bool {
	return q.Size() == 0
}

func (q *TaskQueue) Criteria() models.Criteria {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.criteria
}

// Enqueue adds a copy of t. Completed tasks are rejected before the capacity check.
func (q *TaskQueue) Enqueue(t models.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t.Completed {
		return errors.Wrapf(ErrTaskCompleted, "%q", t.Title)
	}
	if q.size == len(q.heap) {
		return errors.Wrapf(ErrQueueFull, "capacity %d", len(q.heap))
	}

	q.heap[q.size] = t
	q.size++
	q.percolateUp(q.size - 1)
	return nil
}

// PeekBest returns the highest ranked task without removing it.
func (q *TaskQueue) PeekBest() (models.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return models.Task{}, ErrQueueEmpty
	}
	return q.heap[0], nil
}

// Dequeue removes and returns the highest ranked task.
func (q *TaskQueue) Dequeue() (models.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return models.Task{}, ErrQueueEmpty
	}

	best := q.heap[0]
	last := q.size - 1
	q.heap[0] = q.heap[last]
	q.heap[last] = models.Task{}
	q.size--

	if q.size > 1 {
		q.percolateDown(0)
	}
	return best, nil
}

// Reprioritize switches the criteria and rebuilds heap order in place.
func (q *TaskQueue) Reprioritize(criteria models.Criteria) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rebuild(criteria)
}

// Reorder is Reprioritize that also returns the slots before and after the
// rebuild, both taken under the same lock.
func (q *TaskQueue) Reorder(criteria models.Criteria) (before, after []*models.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	before = q.slots()
	q.rebuild(criteria)
	return before, q.slots()
}

func (q *TaskQueue) rebuild(criteria models.Criteria) {
	q.criteria = criteria
	if q.size == 0 {
		return
	}
	for i := (q.size - 1) / 2; i >= 0; i-- {
		q.percolateDown(i)
	}
}

// Snapshot returns a copy of every slot in heap order. Empty slots are nil.
func (q *TaskQueue) Snapshot() []*models.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.slots()
}

func (q *TaskQueue) slots() []*models.Task {
	out := make([]*models.Task, len(q.heap))
	for i := 0; i < q.size; i++ {
		t := q.heap[i]
		out[i] = &t
	}
	return out
}

func (q *TaskQueue) compare(i, j int) int {
	return models.Compare(q.heap[i], q.heap[j], q.criteria)
}

// percolateUp stops at the first ancestor that outranks the new task.
func (q *TaskQueue) percolateUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.compare(i, parent) < 0 {
			return
		}
		q.heap[i], q.heap[parent] = q.heap[parent], q.heap[i]
		i = parent
	}
}

// percolateDown swaps with the child that most outranks the current task.
// The left child wins ties.
func (q *TaskQueue) percolateDown(i int) {
	for {
		best := i
		for child := 2*i + 1; child <= 2*i+2 && child < q.size; child++ {
			if q.compare(child, best) > 0 {
				best = child
			}
		}
		if best == i {
			return
		}
		q.heap[i], q.heap[best] = q.heap[best], q.heap[i]
		i = best
	}
}
