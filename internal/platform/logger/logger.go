package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/pinyin-picturebook/internal/config"
)

// Setup initializes the application's logging system based on the provided
// configuration. It creates a structured JSON logger writing to stdout with
// the configured level and installs it as the slog default.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	logger := New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger, nil
}

// New builds a JSON logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	lvl, ok := ParseLevel(level)
	if !ok {
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps a case-insensitive level name to a slog.Level.
// Unknown names yield slog.LevelInfo and false.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
