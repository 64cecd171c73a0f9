//go:build integration

package testdb

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes. This ensures test isolation and prevents side effects.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		// sql.ErrTxDone is expected if fn already finished the transaction
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("Failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
