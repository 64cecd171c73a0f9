// Package retry runs fallible backend calls with bounded exponential backoff.
//
// Failures that generation.IsPermanent reports (bad requests, authentication
// failures, cancelled contexts) are returned after the first attempt. Anything
// else is retried until MaxAttempts calls have been made; the delay before
// attempt i (0-indexed, i > 0) is BaseDelay * 2^(i-1). The last failure is
// returned unchanged.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
	goretry "github.com/sethvargo/go-retry"
)

// Defaults applied to zero-valued Policy fields.
const (
	DefaultMaxAttempts = 2
	DefaultBaseDelay   = time.Second
)

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt. Non-positive values
	// select DefaultBaseDelay.
	BaseDelay time.Duration
	// Operation names the call in logs.
	Operation string
	Logger    *slog.Logger
	// OnAttempt, when set, is called after every attempt with its 1-based
	// number and its error (nil on success).
	OnAttempt func(attempt int, err error)
}

// DefaultPolicy returns a Policy with DefaultMaxAttempts and DefaultBaseDelay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return p
}

// Do calls op until it succeeds, fails permanently, or MaxAttempts calls
// have been made. Cancelling ctx stops waiting and returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()
	backoff := goretry.WithMaxRetries(uint64(p.MaxAttempts-1), goretry.NewExponential(p.BaseDelay))

	attempt := 0
	return goretry.DoValue(ctx, backoff, func(ctx context.Context) (T, error) {
		attempt++
		v, err := op(ctx)
		if p.OnAttempt != nil {
			p.OnAttempt(attempt, err)
		}
		if err == nil {
			return v, nil
		}

		p.Logger.WarnContext(ctx, "generation attempt failed",
			"operation", p.Operation,
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"error", redact.Error(err))

		if generation.IsPermanent(err) {
			return v, err
		}
		return v, goretry.RetryableError(err)
	})
}
