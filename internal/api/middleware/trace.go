// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/pinyin-picturebook/internal/api/shared"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that adds a trace ID to the request
// context together with a logger carrying it. Apply it early in the chain
// so every later handler logs with the trace ID.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set("X-Trace-ID", traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
