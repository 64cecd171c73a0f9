package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueueEnqueue(t *testing.T) {
	t.Parallel()
	log, _ := newTestLogger()
	q := NewTaskQueue(2, log)

	first := newMockTask(nil)
	require.NoError(t, q.Enqueue(first))
	require.NoError(t, q.Enqueue(newMockTask(nil)))

	err := q.Enqueue(newMockTask(nil))
	assert.ErrorIs(t, err, ErrQueueFull)

	got := <-q.Tasks()
	assert.Equal(t, first.ID(), got.ID())
}

func TestTaskQueueClose(t *testing.T) {
	t.Parallel()
	log, buf := newTestLogger()
	q := NewTaskQueue(1, log)

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(newMockTask(nil)), ErrQueueClosed)
	_, open := <-q.Tasks()
	assert.False(t, open)
	assert.Contains(t, buf.String(), "task queue closed")
}

func TestTaskQueueMinimumSize(t *testing.T) {
	t.Parallel()
	log, _ := newTestLogger()
	q := NewTaskQueue(0, log)

	require.NoError(t, q.Enqueue(newMockTask(nil)))
	assert.ErrorIs(t, q.Enqueue(newMockTask(nil)), ErrQueueFull)
}
