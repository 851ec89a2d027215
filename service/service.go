// Package service provides business logic layer between HTTP handlers and repository
package service

import (
	"context"
	"fmt"

	"github.com/htol/bookshelf/book"
	"github.com/htol/bookshelf/repo"
	"github.com/htol/bookshelf/validator"
)

// Service provides business logic for the application
type Service struct {
	repo repo.Repository
}

// New creates a new Service with the given repository
func New(repo repo.Repository) *Service {
	return &Service{repo: repo}
}

// Bookshelves

// CreateBookshelf validates name and stores a new shelf
func (s *Service) CreateBookshelf(ctx context.Context, name string) (*book.Bookshelf, error) {
	name, err := validator.Required("name", name)
	if err != nil {
		return nil, err
	}
	shelf, err := s.repo.CreateBookshelf(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create bookshelf: %w", err)
	}
	return shelf, nil
}

// ListBookshelves retrieves all shelves in the given order
func (s *Service) ListBookshelves(ctx context.Context, order book.ShelfOrder) ([]book.Bookshelf, error) {
	shelves, err := s.repo.ListBookshelves(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("list bookshelves: %w", err)
	}
	return shelves, nil
}

// Books

// CreateBook validates and stores a new book. An unknown shelf id leaves the
// book unshelved.
func (s *Service) CreateBook(ctx context.Context, title, author string, shelfID *int64) (*book.Book, error) {
	title, author, err := requireBookFields(title, author)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.CreateBook(ctx, title, author, shelfID)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}

// ListBooks retrieves books matching filter, newest first
func (s *Service) ListBooks(ctx context.Context, filter book.BookFilter) ([]book.Book, error) {
	books, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook retrieves a single book by ID
func (s *Service) GetBook(ctx context.Context, id int64) (*book.Book, error) {
	if err := validator.ValidateID(id); err != nil {
		return nil, err
	}
	b, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

// UpdateBook replaces the editable fields of a book
func (s *Service) UpdateBook(ctx context.Context, id int64, title, author string, shelfID *int64) (*book.Book, error) {
	if err := validator.ValidateID(id); err != nil {
		return nil, err
	}
	title, author, err := requireBookFields(title, author)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.UpdateBook(ctx, id, title, author, shelfID)
	if err != nil {
		return nil, fmt.Errorf("update book %d: %w", id, err)
	}
	return b, nil
}

// DeleteBook removes a book and its shopping list entries
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := validator.ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

// Shopping list

// AddToShoppingList adds one entry per existing book id and reports how many
// were added
func (s *Service) AddToShoppingList(ctx context.Context, bookIDs []int64) (int, error) {
	if len(bookIDs) == 0 {
		return 0, nil
	}
	n, err := s.repo.AddToShoppingList(ctx, bookIDs)
	if err != nil {
		return 0, fmt.Errorf("add to shopping list: %w", err)
	}
	return n, nil
}

// ListShoppingList retrieves the shopping list with resolved books
func (s *Service) ListShoppingList(ctx context.Context) ([]book.ShoppingListEntry, error) {
	entries, err := s.repo.ListShoppingList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shopping list: %w", err)
	}
	return entries, nil
}

// Import

// ImportBooks validates every record before storing any of them
func (s *Service) ImportBooks(ctx context.Context, records []book.Record) (int, error) {
	for i := range records {
		title, author, err := requireBookFields(records[i].Title, records[i].Author)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		records[i].Title, records[i].Author = title, author
	}
	n, err := s.repo.ImportBooks(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("import books: %w", err)
	}
	return n, nil
}

// Health

// Ping checks the health of the service and its dependencies
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository ping: %w", err)
	}
	return nil
}

func requireBookFields(title, author string) (string, string, error) {
	title, err := validator.Required("title", title)
	if err != nil {
		return "", "", err
	}
	author, err = validator.Required("author", author)
	if err != nil {
		return "", "", err
	}
	return title, author, nil
}
