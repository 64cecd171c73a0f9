package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
)

// SQLSTATE classes the book schema can raise.
var constraintErrors = map[string]error{
	"23505": store.ErrDuplicate,     // unique_violation
	"23503": store.ErrInvalidEntity, // foreign_key_violation
	"23514": store.ErrInvalidEntity, // check_violation
	"23502": store.ErrInvalidEntity, // not_null_violation
}

// MapError translates driver errors into store sentinels so callers never
// depend on pgx types. Unrecognised errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	sentinel, ok := constraintErrors[pgErr.Code]
	if !ok {
		return err
	}

	where := pgErr.ConstraintName
	if where == "" {
		where = pgErr.ColumnName
	}
	if where == "" {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return fmt.Errorf("%w (%s): %v", sentinel, where, err)
}

// CheckRowsAffected returns notFound when a write matched zero rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("check rows affected: nil result")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
