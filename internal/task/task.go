package task

import (
	"context"

	"github.com/google/uuid"
)

// Status is the lifecycle stage of a Task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// TypeIllustration identifies page illustration tasks.
const TypeIllustration = "illustration"

// Task is one unit of background work run by a WorkerPool.
type Task interface {
	ID() uuid.UUID
	Type() string
	Status() Status
	// Execute performs the work. ctx is cancelled when the pool stops.
	Execute(ctx context.Context) error
}

// Source hands tasks to workers. The channel is closed once the source
// stops accepting work and its backlog has drained.
type Source interface {
	Tasks() <-chan Task
}

// Sink accepts tasks for background execution.
type Sink interface {
	// Enqueue must not block. It fails when the sink is full or closed.
	Enqueue(t Task) error
	Close()
}
