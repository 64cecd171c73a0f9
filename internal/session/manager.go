package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTTL is how long a session may go without reader actions before
// the janitor closes it.
const DefaultIdleTTL = 2 * time.Hour

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Session Config
	IdleTTL time.Duration
}

// Manager owns the live sessions by ID.
type Manager struct {
	deps   Deps
	cfg    ManagerConfig
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Controller
}

// NewManager creates a Manager whose sessions share deps.
func NewManager(deps Deps, cfg ManagerConfig) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Manager{
		deps:     deps,
		cfg:      cfg,
		logger:   deps.Logger.With(slog.String("component", "session_manager")),
		sessions: make(map[uuid.UUID]*Controller),
	}
}

// Create opens a new session.
func (m *Manager) Create() *Controller {
	c := NewController(uuid.New(), m.deps, m.cfg.Session)

	m.mu.Lock()
	m.sessions[c.ID()] = c
	n := len(m.sessions)
	m.mu.Unlock()

	c.announce()
	m.logger.Info("session created",
		slog.String("session_id", c.ID().String()),
		slog.Int("active_sessions", n))
	return c
}

// Get returns the live session with the given ID.
// Returns ErrSessionNotFound if there is none.
func (m *Manager) Get(id uuid.UUID) (*Controller, error) {
	m.mu.RLock()
	c, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Close closes and forgets a session.
// Returns ErrSessionNotFound if there is none.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	c.Close()
	m.logger.Info("session closed", slog.String("session_id", id.String()))
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle closes every session whose last reader action is older than
// the idle TTL at now, and returns how many were closed.
func (m *Manager) EvictIdle(now time.Time) int {
	m.mu.Lock()
	var idle []*Controller
	for id, c := range m.sessions {
		if now.Sub(c.LastActive()) > m.cfg.IdleTTL {
			idle = append(idle, c)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range idle {
		c.Close()
		m.logger.Info("session evicted",
			slog.String("session_id", c.ID().String()),
			slog.Duration("idle_ttl", m.cfg.IdleTTL))
	}
	return len(idle)
}

// Run evicts idle sessions every interval until ctx is done. A non-positive
// interval uses a tenth of the idle TTL.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.cfg.IdleTTL / 10
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.EvictIdle(now); n > 0 {
				m.logger.Debug("idle sessions evicted", slog.Int("count", n))
			}
		}
	}
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Controller)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Close()
		}()
	}
	wg.Wait()
	m.logger.Info("all sessions closed", slog.Int("count", len(sessions)))
}
