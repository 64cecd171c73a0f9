package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type ContextKey string

// TraceIDKey holds the per-request trace ID echoed in error bodies.
const TraceIDKey ContextKey = "traceID"

// TraceIDLength is in bytes; the encoded ID is twice as long.
const TraceIDLength = 16

// SetTraceID returns a copy of ctx carrying a new random trace ID.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID stored in ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(TraceIDKey).(string)
	return id
}

func generateTraceID() string {
	var buf [TraceIDLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Warn("crypto/rand unavailable, falling back to uuid trace id", "error", err)
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(buf[:])
}
