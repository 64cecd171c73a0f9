package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := retry.Do(context.Background(), fastPolicy(2), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls)
}

func TestDoPermanentErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"typed bad request", generation.Wrap(generation.KindBadRequest, errors.New("invalid argument"))},
		{"typed auth", generation.Wrap(generation.KindAuth, errors.New("denied"))},
		{"400 text", errors.New("got HTTP 400 Bad Request")},
		{"401 text", errors.New("got HTTP 401 Unauthorized")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			start := time.Now()
			_, err := retry.Do(context.Background(), retry.Policy{MaxAttempts: 3, BaseDelay: time.Second},
				func(context.Context) (int, error) {
					calls++
					return 0, tt.err
				})

			assert.Same(t, tt.err, err, "error must be returned unchanged")
			assert.Equal(t, 1, calls)
			assert.Less(t, time.Since(start), 500*time.Millisecond, "no backoff wait")
		})
	}
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	t.Parallel()

	transient := errors.New("Rpc failed")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(2), func(context.Context) (int, error) {
		calls++
		if calls <= 2 {
			return 0, transient
		}
		return 42, nil
	})

	assert.Same(t, transient, err)
	assert.Equal(t, 2, calls, "a third attempt must not be made")
}

func TestDoRecoversWithinBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := retry.Do(context.Background(), fastPolicy(3), func(context.Context) (int, error) {
		calls++
		if calls <= 2 {
			return 0, generation.NewFormatError(nil)
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsLastError(t *testing.T) {
	t.Parallel()

	errs := []error{errors.New("first"), errors.New("second"), errors.New("third")}
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(3), func(context.Context) (int, error) {
		e := errs[calls]
		calls++
		return 0, e
	})

	assert.Same(t, errs[2], err)
}

func TestDoBacksOffExponentially(t *testing.T) {
	t.Parallel()

	base := 20 * time.Millisecond
	var stamps []time.Time
	_, err := retry.Do(context.Background(), retry.Policy{MaxAttempts: 3, BaseDelay: base},
		func(context.Context) (int, error) {
			stamps = append(stamps, time.Now())
			return 0, errors.New("transient")
		})

	require.Error(t, err)
	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), base)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 2*base)
}

func TestDoNormalizesPolicy(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := retry.Do(context.Background(), retry.Policy{MaxAttempts: 0}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, retry.Policy{MaxAttempts: 2, BaseDelay: time.Second}, retry.DefaultPolicy())
}

func TestDoHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := retry.Do(ctx, retry.Policy{MaxAttempts: 5, BaseDelay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoReportsAttemptsAndLogs(t *testing.T) {
	t.Parallel()

	buf := &logger.Buffer{}
	var seen []error
	p := fastPolicy(2)
	p.Operation = "story"
	p.Logger = logger.New(buf, "debug")
	p.OnAttempt = func(attempt int, err error) {
		assert.Equal(t, len(seen)+1, attempt)
		seen = append(seen, err)
	}

	calls := 0
	_, err := retry.Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("key=abcdefghijklmnop rejected")
		}
		return 1, nil
	})

	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Error(t, seen[0])
	assert.NoError(t, seen[1])

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "generation attempt failed", entries[0]["msg"])
	assert.Equal(t, "story", entries[0]["operation"])
	assert.EqualValues(t, 1, entries[0]["attempt"])
	assert.EqualValues(t, 2, entries[0]["max_attempts"])
	assert.Equal(t, "key=[REDACTED_KEY] rejected", entries[0]["error"])
}
