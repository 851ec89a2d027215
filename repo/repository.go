package repo

import (
	"context"
	"errors"

	"github.com/htol/bookshelf/book"
)

// ErrNotFound is returned when a record is not found in the repository
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for data access operations
type Repository interface {
	// Close closes the database connection
	Close() error

	// Health check
	Ping(ctx context.Context) error

	// Bookshelves
	CreateBookshelf(ctx context.Context, name string) (*book.Bookshelf, error)
	ListBookshelves(ctx context.Context, order book.ShelfOrder) ([]book.Bookshelf, error)

	// Books
	CreateBook(ctx context.Context, title, author string, shelfID *int64) (*book.Book, error)
	ListBooks(ctx context.Context, filter book.BookFilter) ([]book.Book, error)
	GetBook(ctx context.Context, id int64) (*book.Book, error)
	UpdateBook(ctx context.Context, id int64, title, author string, shelfID *int64) (*book.Book, error)
	// DeleteBook removes the book together with its shopping list entries
	DeleteBook(ctx context.Context, id int64) error

	// Shopping list
	AddToShoppingList(ctx context.Context, bookIDs []int64) (int, error)
	ListShoppingList(ctx context.Context) ([]book.ShoppingListEntry, error)

	// Bulk import
	ImportBooks(ctx context.Context, records []book.Record) (int, error)
}

var _ Repository = (*Repo)(nil)
