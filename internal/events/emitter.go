package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter fans session events out to handlers registered in
// process. Handlers run synchronously on the emitting goroutine, in
// registration order.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{logger: logger.With("component", "session_events")}
}

// RegisterHandler appends handler to the fan-out list.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("session event handler registered", "handlers", n)
}

// EmitEvent delivers event to every handler. A failing handler does not stop
// delivery; the first failure is returned once all handlers have run.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *SessionEvent) error {
	e.mu.RLock()
	targets := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	var firstErr error
	for idx, h := range targets {
		err := h.HandleEvent(ctx, event)
		if err == nil {
			continue
		}
		e.logger.Error("session event handler failed",
			"error", err,
			"handler", idx,
			"session_id", event.SessionID,
			"seq", event.Seq,
			"event_type", event.Type)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
