package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/pinyin-picturebook/internal/redact"
)

// WorkerPool runs tasks from a Source on a fixed number of goroutines.
type WorkerPool struct {
	source      Source
	workerCount int
	logger      *slog.Logger

	// ctx is handed to every Execute call and cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// errorHandler, when set, sees every failed task after it is logged.
	errorHandler func(task Task, err error)

	startOnce sync.Once
	stopOnce  sync.Once
}

type WorkerPoolConfig struct {
	// WorkerCount below one is treated as one.
	WorkerCount int
}

func NewWorkerPool(source Source, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	n := config.WorkerCount
	if n < 1 {
		logger.Warn("worker count must be positive, running a single worker",
			"configured", config.WorkerCount)
		n = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		source:      source,
		workerCount: n,
		logger:      logger.With("component", "illustration_workers"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures.
// It must be called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop cancels in-flight tasks and waits for every worker to return.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	tasks := p.source.Tasks()
	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			p.run(id, t)
		}
	}
}

func (p *WorkerPool) run(workerID int, t Task) {
	log := p.logger.With("worker_id", workerID, "task_id", t.ID(), "task_type", t.Type())
	if lv, ok := t.(slog.LogValuer); ok {
		log = log.With("task", lv)
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return t.Execute(p.ctx)
	}()

	if err == nil {
		log.Debug("task completed")
		return
	}

	log.Error("task failed", "error", redact.Error(err))
	if p.errorHandler != nil {
		p.errorHandler(t, err)
	}
}
