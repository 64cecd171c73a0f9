package main

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/pinyin-picturebook/internal/api"
	apiMiddleware "github.com/phrazzld/pinyin-picturebook/internal/api/middleware"
)

// setupRouter mounts the JSON API under /api next to /metrics and /health.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	sessionHandler := api.NewSessionHandler(app.sessions, app.hub)
	bookHandler := api.NewBookHandler(app.books)

	r.Route("/api", func(r chi.Router) {
		sessionHandler.Routes(r)
		bookHandler.Routes(r)
	})

	r.Handle("/metrics", app.metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := io.WriteString(w, "OK"); err != nil {
			app.logger.Debug("write health response", "error", err)
		}
	})

	return r
}
