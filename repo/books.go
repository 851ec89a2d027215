package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/htol/bookshelf/book"
)

func (r *Repo) CreateBookshelf(ctx context.Context, name string) (*book.Bookshelf, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO bookshelf(name) VALUES(?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert bookshelf: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("bookshelf id: %w", err)
	}
	return &book.Bookshelf{ID: id, Name: name}, nil
}

// CreateBook inserts a book. A shelfID that does not resolve leaves the book
// unshelved.
func (r *Repo) CreateBook(ctx context.Context, title, author string, shelfID *int64) (*book.Book, error) {
	created := &book.Book{Title: title, Author: author}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		shelf, err := lookupShelf(ctx, tx, shelfID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO book(title, author, bookshelf_id) VALUES(?, ?, ?)`,
			title, author, shelfRef(shelf))
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		if created.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("book id: %w", err)
		}
		created.Bookshelf = shelf
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateBook overwrites title, author and shelf. A nil or unresolved shelfID
// clears the shelf.
func (r *Repo) UpdateBook(ctx context.Context, id int64, title, author string, shelfID *int64) (*book.Book, error) {
	var updated *book.Book

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		shelf, err := lookupShelf(ctx, tx, shelfID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE book SET title = ?, author = ?, bookshelf_id = ? WHERE id = ?`,
			title, author, shelfRef(shelf), id)
		if err != nil {
			return fmt.Errorf("update book %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update book %d: %w", id, err)
		} else if n == 0 {
			return ErrNotFound
		}

		updated, err = getBook(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBook removes the book and every shopping list entry pointing at it
// in one transaction
func (r *Repo) DeleteBook(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_list WHERE book_id = ?`, id); err != nil {
			return fmt.Errorf("delete shopping list entries of book %d: %w", id, err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM book WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete book %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete book %d: %w", id, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddToShoppingList appends one entry per id that names an existing book and
// returns how many were added. Unknown ids are skipped.
func (r *Repo) AddToShoppingList(ctx context.Context, bookIDs []int64) (int, error) {
	added := 0

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO shopping_list(book_id) SELECT id FROM book WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("prepare shopping list insert: %w", err)
		}
		defer stmt.Close()

		for _, id := range bookIDs {
			res, err := stmt.ExecContext(ctx, id)
			if err != nil {
				return fmt.Errorf("add book %d to shopping list: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("add book %d to shopping list: %w", id, err)
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func shelfRef(s *book.Bookshelf) any {
	if s == nil {
		return nil
	}
	return s.ID
}
