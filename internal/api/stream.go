package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/pinyin-picturebook/internal/events"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/session"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 512

	// subscriberBuffer is how many events a slow client may lag behind.
	// Every event carries a full snapshot, so when the buffer is full the
	// oldest event is dropped.
	subscriberBuffer = 16
)

// StreamHub fans session events out to WebSocket subscribers. It is an
// events.EventHandler; register it with the session event emitter.
type StreamHub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu   sync.RWMutex
	subs map[uuid.UUID]map[*subscriber]struct{}
}

var _ events.EventHandler = (*StreamHub)(nil)

type subscriber struct {
	events chan *events.SessionEvent
	done   chan struct{}
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// offer queues ev without blocking, evicting the oldest queued event when
// the buffer is full.
func (s *subscriber) offer(ev *events.SessionEvent) bool {
	select {
	case s.events <- ev:
		return true
	default:
	}
	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// NewStreamHub creates an empty hub.
func NewStreamHub(logger *slog.Logger) *StreamHub {
	return &StreamHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Sessions are unauthenticated; any origin may watch one.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "stream_hub")),
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
	}
}

// HandleEvent implements events.EventHandler. It never blocks.
func (h *StreamHub) HandleEvent(_ context.Context, ev *events.SessionEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[ev.SessionID] {
		if !s.offer(ev) {
			h.logger.Warn("dropped event for slow stream subscriber",
				slog.String("session_id", ev.SessionID.String()),
				slog.Uint64("seq", ev.Seq))
		}
		if ev.Type == events.TypeSessionClosed {
			s.close()
		}
	}
	return nil
}

// Subscribers returns the number of open streams for a session.
func (h *StreamHub) Subscribers(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

func (h *StreamHub) subscribe(sessionID uuid.UUID) (*subscriber, func()) {
	s := &subscriber{
		events: make(chan *events.SessionEvent, subscriberBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*subscriber]struct{})
	}
	h.subs[sessionID][s] = struct{}{}
	h.mu.Unlock()

	return s, func() {
		h.mu.Lock()
		delete(h.subs[sessionID], s)
		if len(h.subs[sessionID]) == 0 {
			delete(h.subs, sessionID)
		}
		h.mu.Unlock()
		s.close()
	}
}

// Serve upgrades the request and streams events for c until the session
// closes, the client disconnects, or a write fails. The first message is
// the current snapshot with seq 0; clients order later messages by the
// snapshot version.
func (h *StreamHub) Serve(w http.ResponseWriter, r *http.Request, c *session.Controller) {
	log := logger.FromContextOrDefault(r.Context()).With(slog.String("session_id", c.ID().String()))

	// Subscribe before reading the snapshot so no change falls in between.
	sub, unsubscribe := h.subscribe(c.ID())
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = conn.Close() }()

	initial, err := events.NewSessionEvent(c.ID(), events.TypeSessionUpdated, 0, c.Snapshot())
	if err != nil {
		log.Error("failed to encode snapshot", slog.String("error", err.Error()))
		return
	}

	log.Debug("stream opened")
	readDone := make(chan struct{})
	go readPump(conn, readDone)

	if err := writeEvent(conn, initial); err != nil {
		log.Debug("stream write failed", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-sub.events:
			if err := writeEvent(conn, ev); err != nil {
				log.Debug("stream write failed", slog.String("error", err.Error()))
				return
			}
		case <-sub.done:
			flush(conn, sub)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				time.Now().Add(streamWriteWait))
			log.Debug("stream closed with session")
			return
		case <-readDone:
			log.Debug("stream closed by client")
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

// flush writes whatever is still queued, typically the close event.
func flush(conn *websocket.Conn, sub *subscriber) {
	for {
		select {
		case ev := <-sub.events:
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev *events.SessionEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}

// readPump discards client messages and closes done when the connection
// fails or the peer stops answering pings.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
