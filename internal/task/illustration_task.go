package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
)

// IllustrationRequest identifies one illustration job. Token is the
// per-page request token the session issued; results carrying an older
// token are stale.
type IllustrationRequest struct {
	SessionID uuid.UUID
	Page      int
	Token     uint64
	Prompt    string
}

// IllustrationResult is delivered to the completion callback exactly once.
// Exactly one of ImageData and Err is set.
type IllustrationResult struct {
	IllustrationRequest
	ImageData string
	Err       error
}

// IllustrationTask generates the image for one page and hands the result to
// a completion callback.
type IllustrationTask struct {
	id          uuid.UUID
	req         IllustrationRequest
	illustrator generation.Illustrator
	onDone      func(IllustrationResult)

	mu     sync.RWMutex
	status Status
}

var _ Task = (*IllustrationTask)(nil)

// NewIllustrationTask creates a pending task for req. onDone is called from
// the worker goroutine once the illustrator returns.
func NewIllustrationTask(
	req IllustrationRequest,
	illustrator generation.Illustrator,
	onDone func(IllustrationResult),
) *IllustrationTask {
	return &IllustrationTask{
		id:          uuid.New(),
		req:         req,
		illustrator: illustrator,
		onDone:      onDone,
		status:      StatusPending,
	}
}

// ID returns the task's unique identifier
func (t *IllustrationTask) ID() uuid.UUID { return t.id }

// Type returns TypeIllustration
func (t *IllustrationTask) Type() string { return TypeIllustration }

// Request returns the job description.
func (t *IllustrationTask) Request() IllustrationRequest { return t.req }

// Status returns the current task status
func (t *IllustrationTask) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *IllustrationTask) setStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute calls the illustrator and reports the outcome. onDone runs even
// if the illustrator panics. The returned error is the illustrator's, so the
// pool logs failed illustrations.
func (t *IllustrationTask) Execute(ctx context.Context) (err error) {
	t.setStatus(StatusRunning)
	result := IllustrationResult{IllustrationRequest: t.req}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("illustrator panicked: %v", r)
		}
		if err != nil {
			result.Err = err
			result.ImageData = ""
			t.setStatus(StatusFailed)
		} else {
			t.setStatus(StatusSucceeded)
		}
		if t.onDone != nil {
			t.onDone(result)
		}
	}()

	result.ImageData, err = t.illustrator.Illustrate(ctx, t.req.Prompt)
	return err
}

// LogValue implements slog.LogValuer.
func (t *IllustrationTask) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("session_id", t.req.SessionID.String()),
		slog.Int("page", t.req.Page),
		slog.Uint64("token", t.req.Token),
	)
}
