package repo

import (
	"context"
	"database/sql"

	"github.com/htol/bookshelf/logger"
)

type Repo struct {
	db   *sql.DB
	path string
}

func (r *Repo) Close() error {
	if r.db != nil {
		logger.Info("Closing database connection")
		return r.db.Close()
	}
	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	if r.db != nil {
		return r.db.PingContext(ctx)
	}
	return sql.ErrConnDone
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing only when fn succeeds
func (r *Repo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logger.Warn("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
