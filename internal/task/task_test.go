package task

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id     uuid.UUID
	execFn func(ctx context.Context) error
	runs   atomic.Int32
}

func newMockTask(execFn func(ctx context.Context) error) *mockTask {
	return &mockTask{id: uuid.New(), execFn: execFn}
}

func (m *mockTask) ID() uuid.UUID  { return m.id }
func (m *mockTask) Type() string   { return "mock" }
func (m *mockTask) Status() Status { return StatusPending }

func (m *mockTask) Execute(ctx context.Context) error {
	m.runs.Add(1)
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

var errMockFailure = errors.New("mock failure")

func newTestLogger() (*slog.Logger, *logger.Buffer) {
	buf := &logger.Buffer{}
	return logger.New(buf, "debug"), buf
}
