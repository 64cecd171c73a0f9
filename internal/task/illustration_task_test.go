package task

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIllustrationTaskSuccess(t *testing.T) {
	t.Parallel()

	req := IllustrationRequest{SessionID: uuid.New(), Page: 1, Token: 7, Prompt: "a tortoise"}
	var got IllustrationResult
	calls := 0
	task := NewIllustrationTask(req, generation.IllustratorFunc(func(_ context.Context, prompt string) (string, error) {
		assert.Equal(t, "a tortoise", prompt)
		return "data:image/png;base64,AAAA", nil
	}), func(r IllustrationResult) {
		calls++
		got = r
	})

	assert.Equal(t, StatusPending, task.Status())
	assert.Equal(t, TypeIllustration, task.Type())
	require.NoError(t, task.Execute(context.Background()))

	assert.Equal(t, StatusSucceeded, task.Status())
	assert.Equal(t, 1, calls)
	assert.Equal(t, req, got.IllustrationRequest)
	assert.Equal(t, "data:image/png;base64,AAAA", got.ImageData)
	assert.NoError(t, got.Err)
}

func TestIllustrationTaskFailure(t *testing.T) {
	t.Parallel()

	boom := generation.NewNoImageError()
	var got IllustrationResult
	task := NewIllustrationTask(IllustrationRequest{Page: 2}, generation.IllustratorFunc(
		func(context.Context, string) (string, error) { return "partial", boom },
	), func(r IllustrationResult) { got = r })

	err := task.Execute(context.Background())

	assert.Same(t, boom, err)
	assert.Equal(t, StatusFailed, task.Status())
	assert.Same(t, boom, got.Err)
	assert.Empty(t, got.ImageData)
}

func TestIllustrationTaskPanicStillReports(t *testing.T) {
	t.Parallel()

	var got IllustrationResult
	task := NewIllustrationTask(IllustrationRequest{Page: 0}, generation.IllustratorFunc(
		func(context.Context, string) (string, error) { panic("nil client") },
	), func(r IllustrationResult) { got = r })

	err := task.Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil client")
	assert.Equal(t, err, got.Err)
	assert.Equal(t, StatusFailed, task.Status())
}

func TestIllustrationTaskLogValue(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	task := NewIllustrationTask(IllustrationRequest{SessionID: id, Page: 3, Token: 9}, nil, nil)
	v := task.LogValue()

	attrs := v.Group()
	require.Len(t, attrs, 3)
	assert.Equal(t, id.String(), attrs[0].Value.String())
	assert.EqualValues(t, 3, attrs[1].Value.Int64())
	assert.EqualValues(t, 9, attrs[2].Value.Uint64())
}
