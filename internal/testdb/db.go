//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/pinyin-picturebook/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connection setup and migrations.
const TestTimeout = 30 * time.Second

// GetTestDBWithT opens the test database, applies every migration and
// registers cleanup to close it. Without a configured database the test
// is skipped, or failed when running in CI.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		if isCIEnvironment() {
			t.Fatalf("%s must be set in CI", EnvTestDatabaseURL)
		}
		t.Skipf("%s not set - skipping integration test", EnvTestDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { CleanupDB(t, db) })

	SetupTestDatabaseSchema(t, db)
	return db
}

// SetupTestDatabaseSchema applies the embedded migrations to db.
func SetupTestDatabaseSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	require.NoError(t, postgres.Migrate(ctx, db, postgres.MigrateUp, Logger(t)), "failed to run migrations")
}

// CleanupDB closes db, reporting failures as test errors.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// Logger returns a logger that writes through t.Log.
func Logger(t *testing.T) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
