package service

import (
	"context"
	"errors"
	"testing"

	"github.com/htol/bookshelf/book"
	"github.com/htol/bookshelf/logger"
	"github.com/htol/bookshelf/repo"
	"github.com/htol/bookshelf/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests
	logger.Init("error")
}

// Mock repository for testing
type mockRepository struct {
	shelves   []book.Bookshelf
	books     []book.Book
	entries   []book.ShoppingListEntry
	imported  []book.Record
	err       error
	pingError error

	// arguments of the last write
	lastTitle   string
	lastAuthor  string
	lastShelfID *int64
	lastIDs     []int64
}

func (m *mockRepository) Close() error {
	return nil
}

func (m *mockRepository) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *mockRepository) CreateBookshelf(ctx context.Context, name string) (*book.Bookshelf, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := book.Bookshelf{ID: int64(len(m.shelves) + 1), Name: name}
	m.shelves = append(m.shelves, s)
	return &s, nil
}

func (m *mockRepository) ListBookshelves(ctx context.Context, order book.ShelfOrder) ([]book.Bookshelf, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.shelves, nil
}

func (m *mockRepository) CreateBook(ctx context.Context, title, author string, shelfID *int64) (*book.Book, error) {
	m.lastTitle, m.lastAuthor, m.lastShelfID = title, author, shelfID
	if m.err != nil {
		return nil, m.err
	}
	b := book.Book{ID: int64(len(m.books) + 1), Title: title, Author: author}
	m.books = append(m.books, b)
	return &b, nil
}

func (m *mockRepository) ListBooks(ctx context.Context, filter book.BookFilter) ([]book.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.books, nil
}

func (m *mockRepository) GetBook(ctx context.Context, id int64) (*book.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, b := range m.books {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *mockRepository) UpdateBook(ctx context.Context, id int64, title, author string, shelfID *int64) (*book.Book, error) {
	m.lastTitle, m.lastAuthor, m.lastShelfID = title, author, shelfID
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.books {
		if m.books[i].ID == id {
			m.books[i].Title, m.books[i].Author = title, author
			b := m.books[i]
			return &b, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *mockRepository) DeleteBook(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.books {
		if m.books[i].ID == id {
			m.books = append(m.books[:i], m.books[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *mockRepository) AddToShoppingList(ctx context.Context, bookIDs []int64) (int, error) {
	m.lastIDs = bookIDs
	if m.err != nil {
		return 0, m.err
	}
	return len(bookIDs), nil
}

func (m *mockRepository) ListShoppingList(ctx context.Context) ([]book.ShoppingListEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockRepository) ImportBooks(ctx context.Context, records []book.Record) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.imported = append(m.imported, records...)
	return len(records), nil
}

var errDatabase = errors.New("database error")

func TestCreateBookshelf(t *testing.T) {
	ctx := context.Background()

	t.Run("trims name", func(t *testing.T) {
		svc := New(&mockRepository{})
		shelf, err := svc.CreateBookshelf(ctx, "  Fiction ")
		require.NoError(t, err)
		assert.Equal(t, "Fiction", shelf.Name)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		mock := &mockRepository{}
		svc := New(mock)
		_, err := svc.CreateBookshelf(ctx, "   ")
		assert.ErrorIs(t, err, validator.ErrRequired)
		assert.Empty(t, mock.shelves)
	})

	t.Run("wraps repository error", func(t *testing.T) {
		svc := New(&mockRepository{err: errDatabase})
		_, err := svc.CreateBookshelf(ctx, "Fiction")
		assert.ErrorIs(t, err, errDatabase)
		assert.False(t, validator.IsValidation(err))
	})
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	shelfID := int64(3)

	tests := []struct {
		name    string
		title   string
		author  string
		wantErr error
	}{
		{name: "valid", title: " Dune ", author: "Frank Herbert"},
		{name: "missing title", title: "", author: "Frank Herbert", wantErr: validator.ErrRequired},
		{name: "blank title", title: "  ", author: "Frank Herbert", wantErr: validator.ErrRequired},
		{name: "missing author", title: "Dune", author: "", wantErr: validator.ErrRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRepository{}
			svc := New(mock)

			b, err := svc.CreateBook(ctx, tt.title, tt.author, &shelfID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, mock.books)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Dune", b.Title)
			assert.Equal(t, "Dune", mock.lastTitle)
			assert.Equal(t, &shelfID, mock.lastShelfID)
		})
	}
}

func TestGetBook(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepository{books: []book.Book{{ID: 1, Title: "Dune", Author: "Frank Herbert"}}})

	b, err := svc.GetBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)

	_, err = svc.GetBook(ctx, 2)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = svc.GetBook(ctx, 0)
	assert.ErrorIs(t, err, validator.ErrInvalidID)
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("updates fields", func(t *testing.T) {
		mock := &mockRepository{books: []book.Book{{ID: 1, Title: "Dune", Author: "Frank Herbert"}}}
		svc := New(mock)

		b, err := svc.UpdateBook(ctx, 1, "Dune Messiah ", " Frank Herbert", nil)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", b.Title)
		assert.Equal(t, "Frank Herbert", mock.lastAuthor)
		assert.Nil(t, mock.lastShelfID)
	})

	t.Run("missing book", func(t *testing.T) {
		svc := New(&mockRepository{})
		_, err := svc.UpdateBook(ctx, 5, "Dune", "Frank Herbert", nil)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("validation runs before lookup", func(t *testing.T) {
		mock := &mockRepository{}
		svc := New(mock)
		_, err := svc.UpdateBook(ctx, 5, "Dune", "", nil)
		assert.ErrorIs(t, err, validator.ErrRequired)
		assert.Empty(t, mock.lastTitle)
	})
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	mock := &mockRepository{books: []book.Book{{ID: 1, Title: "Dune", Author: "Frank Herbert"}}}
	svc := New(mock)

	require.NoError(t, svc.DeleteBook(ctx, 1))
	assert.Empty(t, mock.books)
	assert.ErrorIs(t, svc.DeleteBook(ctx, 1), repo.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteBook(ctx, -1), validator.ErrInvalidID)
}

func TestAddToShoppingList(t *testing.T) {
	ctx := context.Background()

	t.Run("empty selection skips repository", func(t *testing.T) {
		mock := &mockRepository{}
		n, err := New(mock).AddToShoppingList(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Nil(t, mock.lastIDs)
	})

	t.Run("passes ids through", func(t *testing.T) {
		mock := &mockRepository{}
		n, err := New(mock).AddToShoppingList(ctx, []int64{1, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []int64{1, 1, 2}, mock.lastIDs)
	})

	t.Run("wraps repository error", func(t *testing.T) {
		_, err := New(&mockRepository{err: errDatabase}).AddToShoppingList(ctx, []int64{1})
		assert.ErrorIs(t, err, errDatabase)
	})
}

func TestListShoppingList(t *testing.T) {
	entries := []book.ShoppingListEntry{{ID: 1, Book: book.Book{ID: 4, Title: "Dune"}}}
	svc := New(&mockRepository{entries: entries})

	got, err := svc.ListShoppingList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestImportBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("trims records", func(t *testing.T) {
		mock := &mockRepository{}
		n, err := New(mock).ImportBooks(ctx, []book.Record{
			{Title: " Dune ", Author: "Frank Herbert ", Shelf: "Fiction"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []book.Record{{Title: "Dune", Author: "Frank Herbert", Shelf: "Fiction"}}, mock.imported)
	})

	t.Run("invalid record rejects the batch", func(t *testing.T) {
		mock := &mockRepository{}
		_, err := New(mock).ImportBooks(ctx, []book.Record{
			{Title: "Dune", Author: "Frank Herbert"},
			{Title: "Emma"},
		})
		assert.ErrorIs(t, err, validator.ErrRequired)
		assert.Contains(t, err.Error(), "record 2")
		assert.Empty(t, mock.imported)
	})
}

func TestPing(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, New(&mockRepository{}).Ping(ctx))

	err := New(&mockRepository{pingError: errDatabase}).Ping(ctx)
	assert.ErrorIs(t, err, errDatabase)
}
