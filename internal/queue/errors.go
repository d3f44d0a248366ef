package queue

import "github.com/pkg/errors"

var (
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrQueueFull       = errors.New("task queue is full")
	ErrQueueEmpty      = errors.New("task queue is empty")
	ErrTaskCompleted   = errors.New("task is already completed")
)
