package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/events"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
	"github.com/phrazzld/pinyin-picturebook/internal/task"
)

// DefaultQuizAdvanceDelay is how long answer feedback shows before the quiz moves on.
const DefaultQuizAdvanceDelay = 2 * time.Second

// Deps are the collaborators a Controller runs effects with.
type Deps struct {
	Stories     generation.StoryGenerator
	Illustrator generation.Illustrator

	// Queue receives illustration tasks. When nil, each illustration runs
	// on its own goroutine.
	Queue task.Sink

	// Books archives generated books. Optional.
	Books store.BookStore

	// Emitter receives a SessionEvent after every applied change. Optional.
	// Handlers are called with the session lock held and must not block.
	Emitter events.EventEmitter

	Logger *slog.Logger
}

// Config holds controller timing.
type Config struct {
	QuizAdvanceDelay time.Duration
}

// Controller owns one reading session. It serializes every event through
// Reduce and runs the resulting effects asynchronously; effect completions
// come back as events through the same path.
type Controller struct {
	id     uuid.UUID
	deps   Deps
	cfg    Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// persistMu serializes archive writes; persisted holds the newest
	// illustration token written for each book page.
	persistMu sync.Mutex
	persisted map[pageKey]uint64

	mu         sync.Mutex
	state      State
	seq        uint64
	timers     map[*time.Timer]struct{}
	closed     bool
	lastActive time.Time
}

// NewController creates a session in the input phase.
func NewController(id uuid.UUID, deps Deps, cfg Config) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.QuizAdvanceDelay <= 0 {
		cfg.QuizAdvanceDelay = DefaultQuizAdvanceDelay
	}

	log := deps.Logger.With(
		slog.String("component", "session"),
		slog.String("session_id", id.String()),
	)
	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))

	return &Controller{
		id:         id,
		deps:       deps,
		cfg:        cfg,
		logger:     log,
		ctx:        ctx,
		cancel:     cancel,
		state:      NewState(),
		timers:     make(map[*time.Timer]struct{}),
		persisted:  make(map[pageKey]uint64),
		lastActive: time.Now(),
	}
}

// announce emits the creation event carrying the initial snapshot.
func (c *Controller) announce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitLocked(c.ctx, events.TypeSessionCreated)
}

// ID returns the session ID.
func (c *Controller) ID() uuid.UUID { return c.id }

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{SessionID: c.id, Version: c.state.Revision(), State: c.state}
}

// LastActive returns the time of the last reader action.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}

// Dispatch applies a reader action and returns the resulting snapshot.
// On error the state is unchanged and the returned snapshot shows it.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshotLocked(), ErrSessionClosed
	}
	c.lastActive = time.Now()

	err := c.applyLocked(ctx, ev)
	if err != nil {
		logger.FromContextOrDefault(ctx).Debug("session event rejected",
			slog.String("session_id", c.id.String()),
			slog.String("event", ev.eventName()),
			slog.String("error", err.Error()))
	}
	return c.snapshotLocked(), err
}

// deliver applies an effect completion. Completions for a closed session
// are dropped.
func (c *Controller) deliver(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if err := c.applyLocked(c.ctx, ev); err != nil {
		c.logger.Warn("effect completion rejected",
			slog.String("event", ev.eventName()),
			slog.String("error", err.Error()))
	}
}

// applyLocked reduces ev and every follow-up event produced while starting
// its effects. Only the error of ev itself is returned.
func (c *Controller) applyLocked(ctx context.Context, ev Event) error {
	pending := []Event{ev}
	var first error
	for i := 0; len(pending) > 0; i++ {
		next, effects, err := Reduce(c.state, pending[0])
		pending = pending[1:]
		if err != nil {
			if i == 0 {
				first = err
			}
			continue
		}

		changedState := next.Revision() != c.state.Revision()
		c.state = next
		if changedState {
			c.emitLocked(ctx, events.TypeSessionUpdated)
		}
		for _, eff := range effects {
			if follow := c.startLocked(eff); follow != nil {
				pending = append(pending, follow)
			}
		}
	}
	return first
}

func (c *Controller) emitLocked(ctx context.Context, eventType string) {
	if c.deps.Emitter == nil {
		return
	}
	c.seq++
	ev, err := events.NewSessionEvent(c.id, eventType, c.seq, c.snapshotLocked())
	if err != nil {
		c.logger.Error("failed to encode session event", slog.String("error", err.Error()))
		return
	}
	if err := c.deps.Emitter.EmitEvent(ctx, ev); err != nil {
		c.logger.Warn("failed to emit session event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

// startLocked launches eff without blocking. A non-nil return is an event
// to reduce immediately because the effect could not be started.
func (c *Controller) startLocked(eff Effect) Event {
	switch eff := eff.(type) {
	case GenerateStoryEffect:
		c.goTracked(func() { c.generateStory(eff) })
	case IllustrateEffect:
		return c.illustrate(eff)
	case ScheduleAdvanceEffect:
		c.scheduleAdvance(eff)
	case PersistImageEffect:
		c.goTracked(func() { c.persistImage(eff) })
	default:
		c.logger.Error("unsupported effect", slog.String("effect", fmt.Sprintf("%T", eff)))
	}
	return nil
}

func (c *Controller) goTracked(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Controller) generateStory(eff GenerateStoryEffect) {
	story, err := c.deps.Stories.GenerateStory(c.ctx, eff.Text)
	if err != nil {
		c.deliver(StoryFailed{Token: eff.Token, Err: err})
		return
	}
	c.deliver(StoryGenerated{Token: eff.Token, Story: *story, BookID: c.archive(eff.Text, *story)})
}

// archive stores a generated book. Archive failures do not fail the session;
// the book is simply not persisted.
func (c *Controller) archive(text string, story domain.GeneratedStory) *uuid.UUID {
	if c.deps.Books == nil {
		return nil
	}
	book, err := domain.NewBook(text, story)
	if err == nil {
		err = c.deps.Books.Create(c.ctx, book)
	}
	if err != nil {
		c.logger.Warn("failed to archive book", slog.String("error", redact.Error(err)))
		return nil
	}
	return &book.ID
}

func (c *Controller) illustrate(eff IllustrateEffect) Event {
	req := task.IllustrationRequest{
		SessionID: c.id,
		Page:      eff.Page,
		Token:     eff.Token,
		Prompt:    eff.Prompt,
	}
	t := task.NewIllustrationTask(req, c.deps.Illustrator, func(r task.IllustrationResult) {
		if r.Err != nil {
			c.deliver(IllustrationFailed{Page: r.Page, Token: r.Token, Err: r.Err})
			return
		}
		c.deliver(IllustrationDone{Page: r.Page, Token: r.Token, ImageData: r.ImageData})
	})

	if c.deps.Queue == nil {
		c.goTracked(func() {
			if err := t.Execute(c.ctx); err != nil {
				c.logger.Error("illustration failed",
					slog.Int("page", eff.Page),
					slog.String("error", redact.Error(err)))
			}
		})
		return nil
	}

	if err := c.deps.Queue.Enqueue(t); err != nil {
		c.logger.Error("failed to enqueue illustration",
			slog.Int("page", eff.Page),
			slog.String("error", err.Error()))
		return IllustrationFailed{Page: eff.Page, Token: eff.Token, Err: err}
	}
	return nil
}

func (c *Controller) scheduleAdvance(eff ScheduleAdvanceEffect) {
	var timer *time.Timer
	timer = time.AfterFunc(c.cfg.QuizAdvanceDelay, func() {
		c.mu.Lock()
		delete(c.timers, timer)
		c.mu.Unlock()
		c.deliver(QuizAdvance{Round: eff.Round, QuizIndex: eff.QuizIndex})
	})
	c.timers[timer] = struct{}{}
}

type pageKey struct {
	book uuid.UUID
	page int
}

// persistImage writes one page image to the archive. Writes for a session
// are serialized and an image older than the one already stored for the
// page is dropped.
func (c *Controller) persistImage(eff PersistImageEffect) {
	if c.deps.Books == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	key := pageKey{book: eff.BookID, page: eff.Page}
	if eff.Token <= c.persisted[key] {
		c.logger.Debug("skipping superseded page image",
			slog.String("book_id", eff.BookID.String()),
			slog.Int("page", eff.Page))
		return
	}
	if err := c.deps.Books.SavePageImage(c.ctx, eff.BookID, eff.Page, eff.ImageData); err != nil {
		c.logger.Warn("failed to archive page image",
			slog.String("book_id", eff.BookID.String()),
			slog.Int("page", eff.Page),
			slog.String("error", redact.Error(err)))
		return
	}
	c.persisted[key] = eff.Token
}

// Close stops the session. Pending timers are stopped, in-flight generation
// is cancelled, and Close waits for effect goroutines to return. Illustration
// tasks already queued finish on the worker pool and are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for t := range c.timers {
		t.Stop()
	}
	clear(c.timers)
	c.emitLocked(c.ctx, events.TypeSessionClosed)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Reader actions. Each returns the snapshot after the action.

// CreateStory starts generating a book from text.
func (c *Controller) CreateStory(ctx context.Context, text string) (Snapshot, error) {
	return c.Dispatch(ctx, CreateStory{Text: text})
}

// OpenBook loads an archived book for reading.
func (c *Controller) OpenBook(ctx context.Context, bookID uuid.UUID) (Snapshot, error) {
	if c.deps.Books == nil {
		return c.Snapshot(), ErrArchiveUnavailable
	}
	c.touch()
	book, err := c.deps.Books.GetByID(ctx, bookID)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.Dispatch(ctx, OpenBook{Book: book})
}

// Navigate moves delta pages.
func (c *Controller) Navigate(ctx context.Context, delta int) (Snapshot, error) {
	return c.Dispatch(ctx, Navigate{Delta: delta})
}

// StartGame opens the quiz from the last page.
func (c *Controller) StartGame(ctx context.Context) (Snapshot, error) {
	return c.Dispatch(ctx, StartGame{})
}

// Answer selects an option for the current quiz item.
func (c *Controller) Answer(ctx context.Context, option string) (Snapshot, error) {
	return c.Dispatch(ctx, Answer{Option: option})
}

// PlayAgain restarts a finished quiz.
func (c *Controller) PlayAgain(ctx context.Context) (Snapshot, error) {
	return c.Dispatch(ctx, PlayAgain{})
}

// ExitGame returns to reading.
func (c *Controller) ExitGame(ctx context.Context) (Snapshot, error) {
	return c.Dispatch(ctx, ExitGame{})
}

// RegenerateImage requests a new illustration for page.
func (c *Controller) RegenerateImage(ctx context.Context, page int) (Snapshot, error) {
	return c.Dispatch(ctx, RegenerateImage{Page: page})
}

// Reset returns to the input phase.
func (c *Controller) Reset(ctx context.Context) (Snapshot, error) {
	return c.Dispatch(ctx, Reset{})
}

// IsClientError reports whether err was caused by the reader's request
// rather than by the session or its collaborators.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrUnknownOption) ||
		errors.Is(err, domain.ErrEmptyText) ||
		errors.Is(err, domain.ErrPageOutOfRange)
}
