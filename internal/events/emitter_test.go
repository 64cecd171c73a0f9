package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu           sync.Mutex
	HandledCount int
	LastEvent    *SessionEvent
	Err          error
}

func (m *MockEventHandler) HandleEvent(_ context.Context, event *SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandledCount++
	m.LastEvent = event
	return m.Err
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionID := uuid.New()

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewSessionEvent(sessionID, TypeSessionUpdated, 1, map[string]string{"phase": "input"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewSessionEvent(sessionID, TypeSessionUpdated, 1, nil)
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first := errors.New("first")
		failing := &MockEventHandler{Err: first}
		alsoFailing := &MockEventHandler{Err: errors.New("second")}
		ok := &MockEventHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(alsoFailing)
		emitter.RegisterHandler(ok)

		event, err := NewSessionEvent(sessionID, TypeSessionClosed, 2, nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.Same(t, first, err)
		assert.Equal(t, 1, ok.HandledCount)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var got []uint64
		emitter.RegisterHandler(EventHandlerFunc(func(_ context.Context, e *SessionEvent) error {
			got = append(got, e.Seq)
			return nil
		}))

		for seq := uint64(1); seq <= 3; seq++ {
			event, err := NewSessionEvent(sessionID, TypeSessionUpdated, seq, nil)
			require.NoError(t, err)
			require.NoError(t, emitter.EmitEvent(context.Background(), event))
		}
		assert.Equal(t, []uint64{1, 2, 3}, got)
	})
}
