package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	fnErr := errors.New("function failed")
	dbErr := errors.New("database failed")

	tests := []struct {
		name        string
		expect      func(mock sqlmock.Sqlmock)
		fn          TxFn
		wantErr     error
		errContains string
	}{
		{
			name: "commits on success",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx *sql.Tx) error { return nil },
		},
		{
			name: "rolls back when fn fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn:      func(ctx context.Context, tx *sql.Tx) error { return fnErr },
			wantErr: fnErr,
		},
		{
			name: "begin failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(dbErr)
			},
			fn:          func(ctx context.Context, tx *sql.Tx) error { return nil },
			wantErr:     dbErr,
			errContains: "begin transaction",
		},
		{
			name: "commit failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(dbErr)
			},
			fn:          func(ctx context.Context, tx *sql.Tx) error { return nil },
			wantErr:     dbErr,
			errContains: "commit transaction",
		},
		{
			name: "rollback failure keeps original error",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(dbErr)
			},
			fn:          func(ctx context.Context, tx *sql.Tx) error { return fnErr },
			wantErr:     fnErr,
			errContains: "rollback transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.expect(mock)

			err = RunInTransaction(context.Background(), db, tt.fn)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransactionPanicRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
