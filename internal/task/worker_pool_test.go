package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	t.Parallel()
	log, _ := newTestLogger()
	q := NewTaskQueue(1, log)

	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 5}, log)
	assert.Equal(t, 5, pool.workerCount)
	assert.Nil(t, pool.errorHandler)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 0}, log)
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: -5}, log)
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPoolRunsTasksConcurrently(t *testing.T) {
	t.Parallel()
	log, _ := newTestLogger()
	q := NewTaskQueue(4, log)
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 2}, log)
	pool.Start()
	defer pool.Stop()

	// Both tasks block until the other has started, so they must overlap.
	var started sync.WaitGroup
	started.Add(2)
	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		require.NoError(t, q.Enqueue(newMockTask(func(ctx context.Context) error {
			started.Done()
			started.Wait()
			done <- struct{}{}
			return nil
		})))
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("tasks did not run concurrently")
		}
	}
}

func TestWorkerPoolErrorHandler(t *testing.T) {
	t.Parallel()
	log, buf := newTestLogger()
	q := NewTaskQueue(2, log)
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, log)

	failures := make(chan error, 2)
	pool.SetErrorHandler(func(_ Task, err error) { failures <- err })
	pool.Start()
	defer pool.Stop()

	require.NoError(t, q.Enqueue(newMockTask(func(context.Context) error { return errMockFailure })))
	require.NoError(t, q.Enqueue(newMockTask(func(context.Context) error { panic("boom") })))

	for i := 0; i < 2; i++ {
		select {
		case err := <-failures:
			assert.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("error handler not called")
		}
	}
	assert.Contains(t, buf.String(), "task failed")
	assert.Contains(t, buf.String(), "task panicked: boom")
}

func TestWorkerPoolStopCancelsTasks(t *testing.T) {
	t.Parallel()
	log, _ := newTestLogger()
	q := NewTaskQueue(1, log)
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, log)
	pool.Start()

	running := make(chan struct{})
	task := newMockTask(func(ctx context.Context) error {
		close(running)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, q.Enqueue(task))
	<-running

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.EqualValues(t, 1, task.runs.Load())
	pool.Stop()
}

func TestWorkerPoolExitsWhenQueueClosed(t *testing.T) {
	t.Parallel()
	log, _ := newTestLogger()
	q := NewTaskQueue(1, log)
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, log)
	pool.Start()

	q.Close()

	waited := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after queue close")
	}
	pool.Stop()
}
