package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/htol/bookshelf/book"
	"github.com/htol/bookshelf/logger"
)

// importChunkSize keeps 3 params per row well under SQLite's variable limit
const importChunkSize = 3000

// ImportBooks inserts records in a single transaction, creating bookshelves
// that do not exist yet. It returns the number of books inserted.
func (r *Repo) ImportBooks(ctx context.Context, records []book.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		shelves, err := newShelfCache(ctx, tx)
		if err != nil {
			return err
		}

		for i := 0; i < len(records); i += importChunkSize {
			end := min(i+importChunkSize, len(records))
			if err := insertBookChunk(ctx, tx, shelves, records[i:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Imported books", "count", len(records))
	return len(records), nil
}

func insertBookChunk(ctx context.Context, tx *sql.Tx, shelves *shelfCache, chunk []book.Record) error {
	valueStrings := make([]string, 0, len(chunk))
	valueArgs := make([]any, 0, len(chunk)*3)

	for _, rec := range chunk {
		shelfID, err := shelves.getOrCreate(ctx, rec.Shelf)
		if err != nil {
			return err
		}
		valueStrings = append(valueStrings, "(?, ?, ?)")
		valueArgs = append(valueArgs, rec.Title, rec.Author, shelfID)
	}

	stmt := fmt.Sprintf("INSERT INTO book(title, author, bookshelf_id) VALUES %s",
		strings.Join(valueStrings, ","))
	if _, err := tx.ExecContext(ctx, stmt, valueArgs...); err != nil {
		return fmt.Errorf("insert books: %w", err)
	}
	return nil
}
