package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session event types.
const (
	// TypeSessionCreated is emitted once when a session is opened.
	TypeSessionCreated = "session.created"
	// TypeSessionUpdated is emitted after every applied state change.
	TypeSessionUpdated = "session.updated"
	// TypeSessionClosed is emitted when a session is closed or evicted.
	TypeSessionClosed = "session.closed"
)

// SessionEvent reports a change to one reading session. Payload holds the
// session snapshot as JSON.
type SessionEvent struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	Type      string          `json:"type"`
	Seq       uint64          `json:"seq"` // per session, starting at 1
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes Payload into v.
func (e *SessionEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewSessionEvent stamps a new event. A nil payload leaves Payload empty.
func NewSessionEvent(sessionID uuid.UUID, eventType string, seq uint64, payload any) (*SessionEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &SessionEvent{
		ID:        uuid.New(),
		SessionID: sessionID,
		Type:      eventType,
		Seq:       seq,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler consumes session events. Handlers run on the emitting
// goroutine while the session is locked, so they must not block.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *SessionEvent) error
}

type EventHandlerFunc func(ctx context.Context, event *SessionEvent) error

func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *SessionEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes session events to whoever is listening.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *SessionEvent) error
}
