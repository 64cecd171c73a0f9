package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, if any.
func FromContext(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(contextKey{}).(*slog.Logger)
	return l, ok && l != nil
}

// FromContextOrDefault returns the logger stored in ctx or slog.Default().
func FromContextOrDefault(ctx context.Context) *slog.Logger {
	if l, ok := FromContext(ctx); ok {
		return l
	}
	return slog.Default()
}
