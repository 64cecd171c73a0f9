package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	migrationsDir      = "migrations"
	migrationTableName = "schema_migrations"
)

// Migration commands accepted by Migrate.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateStatus  = "status"
	MigrateVersion = "version"
)

// goose keeps its settings in package state.
var gooseMu sync.Mutex

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at ERROR without exiting; goose returns the error to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate runs a goose command against db using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "migrations"), slog.String("command", command))

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetTableName(migrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, migrationsDir)
	case MigrateDown:
		err = goose.DownContext(ctx, db, migrationsDir)
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, migrationsDir)
	case MigrateVersion:
		err = goose.VersionContext(ctx, db, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
