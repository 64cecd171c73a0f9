package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pinyin-picturebook/internal/api"
	"github.com/phrazzld/pinyin-picturebook/internal/config"
	"github.com/phrazzld/pinyin-picturebook/internal/events"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/gemini"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/metrics"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/postgres"
	"github.com/phrazzld/pinyin-picturebook/internal/session"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
	"github.com/phrazzld/pinyin-picturebook/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	metrics     *metrics.Metrics
	stories     generation.StoryGenerator
	illustrator generation.Illustrator
	books       store.BookStore

	// Illustration jobs
	queue *task.TaskQueue
	pool  *task.WorkerPool

	// Event system
	emitter *events.InMemoryEventEmitter
	hub     *api.StreamHub

	sessions *session.Manager
}

// newApplication wires every component around the Gemini model service.
// A nil db selects the in-memory book archive. The illustration worker
// pool is started before returning.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	models gemini.ContentGenerator,
) (*application, error) {
	if models == nil {
		return nil, fmt.Errorf("model service is required")
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	opts := gemini.Options{
		Logger:   logger.With("component", "gemini"),
		Policy:   gemini.PolicyFromConfig(cfg.LLM),
		Observer: app.metrics,
	}
	app.stories = gemini.NewStoryGenerator(models, cfg.LLM.TextModel, opts)
	app.illustrator = gemini.NewIllustrator(models, cfg.LLM.ImageModel, opts)

	if db != nil {
		app.books = postgres.NewBookStore(db, logger)
	} else {
		app.books = store.NewMemoryBookStore(logger)
		logger.Warn("no database configured, archived books are kept in memory")
	}

	app.queue = task.NewTaskQueue(cfg.Session.IllustrationQueueSize, logger)
	app.pool = task.NewWorkerPool(app.queue, task.WorkerPoolConfig{
		WorkerCount: cfg.Session.IllustrationWorkers,
	}, logger)
	app.pool.Start()

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.hub = api.NewStreamHub(logger)
	app.emitter.RegisterHandler(app.metrics)
	app.emitter.RegisterHandler(app.hub)

	app.sessions = session.NewManager(session.Deps{
		Stories:     app.stories,
		Illustrator: app.illustrator,
		Queue:       app.queue,
		Books:       app.books,
		Emitter:     app.emitter,
		Logger:      logger,
	}, session.ManagerConfig{
		Session: session.Config{QuizAdvanceDelay: cfg.Session.QuizAdvanceDelay},
		IdleTTL: cfg.Session.IdleTTL,
	})

	logger.Info("Application initialized successfully",
		"illustration_workers", cfg.Session.IllustrationWorkers,
		"illustration_queue_size", cfg.Session.IllustrationQueueSize,
		"archive", archiveKind(db))
	return app, nil
}

func archiveKind(db *sql.DB) string {
	if db != nil {
		return "postgres"
	}
	return "memory"
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go app.sessions.Run(janitorCtx, 0)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Sessions close
// first so their streams end and no new illustrations are queued.
func (app *application) cleanup() {
	if app.sessions != nil {
		app.sessions.Shutdown()
	}

	if app.pool != nil {
		app.pool.Stop()
	}
	if app.queue != nil {
		app.queue.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
