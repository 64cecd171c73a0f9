package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded in-memory Source and Sink.
type TaskQueue struct {
	// mu guards closed against a concurrent send on ch.
	mu     sync.RWMutex
	closed bool
	ch     chan Task
	logger *slog.Logger
}

var (
	_ Source = (*TaskQueue)(nil)
	_ Sink   = (*TaskQueue)(nil)
)

// NewTaskQueue returns a queue holding at most capacity pending tasks.
// Capacities below one are raised to one.
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		ch:     make(chan Task, max(capacity, 1)),
		logger: logger,
	}
}

func (q *TaskQueue) Enqueue(t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- t:
	default:
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, cap(q.ch))
	}
	q.logger.Debug("task queued",
		"task_id", t.ID(),
		"task_type", t.Type(),
		"pending", len(q.ch))
	return nil
}

// Close stops intake. Workers may still drain what is already queued.
// Closing twice is a no-op.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	q.logger.Info("task queue closed")
}

func (q *TaskQueue) Tasks() <-chan Task {
	return q.ch
}
