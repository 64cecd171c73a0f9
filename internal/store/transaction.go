package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
)

// TxFn is the body of a transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction commits when fn returns nil and rolls back otherwise.
// A panic in fn rolls back and is re-raised.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) (err error) {
	log := logger.FromContextOrDefault(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin transaction", "error", redact.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		p := recover()
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback transaction",
				"error", redact.Error(rbErr),
				"cause", redact.Error(err),
				"panic", p)
			if p == nil {
				err = fmt.Errorf("rollback transaction: %w", errors.Join(err, rbErr))
			}
		}
		if p != nil {
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	committed = true
	if err = tx.Commit(); err != nil {
		log.Error("commit transaction", "error", redact.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
