package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/htol/bookshelf/logger"
)

// shelfCache maps bookshelf names to ids for the duration of one import
// transaction. Lookups are case-insensitive.
type shelfCache struct {
	tx    *sql.Tx
	byKey map[string]int64
}

func newShelfCache(ctx context.Context, tx *sql.Tx) (*shelfCache, error) {
	c := &shelfCache{tx: tx, byKey: make(map[string]int64)}

	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM bookshelf ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load bookshelves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan bookshelf: %w", err)
		}
		// first shelf with a given name wins
		if _, ok := c.byKey[shelfKey(name)]; !ok {
			c.byKey[shelfKey(name)] = id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookshelves: %w", err)
	}
	logger.Debug("Loaded bookshelves", "count", len(c.byKey))

	return c, nil
}

// getOrCreate returns the id of the shelf called name, creating it if needed.
// A blank name yields nil.
func (c *shelfCache) getOrCreate(ctx context.Context, name string) (any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if id, ok := c.byKey[shelfKey(name)]; ok {
		return id, nil
	}

	res, err := c.tx.ExecContext(ctx, `INSERT INTO bookshelf(name) VALUES(?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert bookshelf %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("bookshelf id: %w", err)
	}
	c.byKey[shelfKey(name)] = id
	return id, nil
}

func shelfKey(name string) string {
	return casefold(strings.TrimSpace(name))
}
