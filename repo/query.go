package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/htol/bookshelf/book"
)

const selectBooks = `
	SELECT b.id, b.title, b.author, s.id, s.name
	FROM book b
	LEFT JOIN bookshelf s ON s.id = b.bookshelf_id`

// likeEscaper makes % and _ in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildBookQuery composes the listing query for filter. Title and author are
// case-insensitive substring matches, the shelf is an exact match, and all
// set conditions must hold. Unshelved books are kept unless a shelf is given.
func buildBookQuery(filter book.BookFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.Title != "" {
		where = append(where, `casefold(b.title) LIKE '%' || casefold(?) || '%' ESCAPE '\'`)
		args = append(args, likeEscaper.Replace(filter.Title))
	}
	if filter.Author != "" {
		where = append(where, `casefold(b.author) LIKE '%' || casefold(?) || '%' ESCAPE '\'`)
		args = append(args, likeEscaper.Replace(filter.Author))
	}
	if filter.BookshelfID != nil {
		where = append(where, `b.bookshelf_id = ?`)
		args = append(args, *filter.BookshelfID)
	}

	var sb strings.Builder
	sb.WriteString(selectBooks)
	if len(where) > 0 {
		sb.WriteString("\n\tWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\n\tORDER BY b.id DESC")

	return sb.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBook reads the column set of selectBooks
func scanBook(row rowScanner, extra ...any) (book.Book, error) {
	var (
		b         book.Book
		shelfID   sql.NullInt64
		shelfName sql.NullString
	)
	dest := make([]any, 0, len(extra)+5)
	dest = append(dest, extra...)
	dest = append(dest, &b.ID, &b.Title, &b.Author, &shelfID, &shelfName)
	if err := row.Scan(dest...); err != nil {
		return book.Book{}, err
	}
	if shelfID.Valid {
		b.Bookshelf = &book.Bookshelf{ID: shelfID.Int64, Name: shelfName.String}
	}
	return b, nil
}

// ListBooks returns the books matching filter, newest first
func (r *Repo) ListBooks(ctx context.Context, filter book.BookFilter) ([]book.Book, error) {
	query, args := buildBookQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]book.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}

func (r *Repo) GetBook(ctx context.Context, id int64) (*book.Book, error) {
	return getBook(ctx, r.db, id)
}

func getBook(ctx context.Context, q querier, id int64) (*book.Book, error) {
	b, err := scanBook(q.QueryRowContext(ctx, selectBooks+"\n\tWHERE b.id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book by ID %d: %w", id, err)
	}
	return &b, nil
}

// ListBookshelves returns all shelves in the requested order
func (r *Repo) ListBookshelves(ctx context.Context, order book.ShelfOrder) ([]book.Bookshelf, error) {
	QUERY := `SELECT id, name FROM bookshelf ORDER BY id`
	if order == book.ShelvesByIDDesc {
		QUERY += " DESC"
	}

	rows, err := r.db.QueryContext(ctx, QUERY)
	if err != nil {
		return nil, fmt.Errorf("query bookshelves: %w", err)
	}
	defer rows.Close()

	shelves := make([]book.Bookshelf, 0)
	for rows.Next() {
		var s book.Bookshelf
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan bookshelf: %w", err)
		}
		shelves = append(shelves, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookshelves: %w", err)
	}

	return shelves, nil
}

// lookupShelf resolves an optional shelf id. A missing shelf yields nil
// rather than an error, so the book ends up unshelved.
func lookupShelf(ctx context.Context, q querier, id *int64) (*book.Bookshelf, error) {
	if id == nil {
		return nil, nil
	}
	var s book.Bookshelf
	err := q.QueryRowContext(ctx, `SELECT id, name FROM bookshelf WHERE id = ?`, *id).Scan(&s.ID, &s.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bookshelf by ID %d: %w", *id, err)
	}
	return &s, nil
}

// ListShoppingList returns entries in the order they were added, each with
// its book resolved
func (r *Repo) ListShoppingList(ctx context.Context) ([]book.ShoppingListEntry, error) {
	QUERY := `
		SELECT e.id, b.id, b.title, b.author, s.id, s.name
		FROM shopping_list e
		JOIN book b ON b.id = e.book_id
		LEFT JOIN bookshelf s ON s.id = b.bookshelf_id
		ORDER BY e.id`

	rows, err := r.db.QueryContext(ctx, QUERY)
	if err != nil {
		return nil, fmt.Errorf("query shopping list: %w", err)
	}
	defer rows.Close()

	entries := make([]book.ShoppingListEntry, 0)
	for rows.Next() {
		var e book.ShoppingListEntry
		b, err := scanBook(rows, &e.ID)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list entry: %w", err)
		}
		e.Book = b
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shopping list: %w", err)
	}

	return entries, nil
}
