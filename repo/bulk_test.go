package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/htol/bookshelf/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBooksCreatesShelves(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	existing, err := r.CreateBookshelf(ctx, "Fiction")
	require.NoError(t, err)

	n, err := r.ImportBooks(ctx, []book.Record{
		{Title: "Dune", Author: "Frank Herbert", Shelf: "fiction"},
		{Title: "Cosmos", Author: "Carl Sagan", Shelf: "Science"},
		{Title: "Contact", Author: "Carl Sagan", Shelf: " SCIENCE "},
		{Title: "Emma", Author: "Jane Austen"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	shelves, err := r.ListBookshelves(ctx, book.ShelvesByID)
	require.NoError(t, err)
	require.Len(t, shelves, 2)
	assert.Equal(t, "Science", shelves[1].Name)

	books, err := r.ListBooks(ctx, book.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 4)

	byTitle := make(map[string]book.Book, len(books))
	for _, b := range books {
		byTitle[b.Title] = b
	}
	assert.Equal(t, existing.ID, byTitle["Dune"].Bookshelf.ID)
	assert.Equal(t, shelves[1].ID, byTitle["Cosmos"].Bookshelf.ID)
	assert.Equal(t, shelves[1].ID, byTitle["Contact"].Bookshelf.ID)
	assert.Nil(t, byTitle["Emma"].Bookshelf)
}

func TestImportBooksEmpty(t *testing.T) {
	r := newTestRepo(t)

	n, err := r.ImportBooks(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportBooksSpansChunks(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	records := make([]book.Record, importChunkSize+10)
	for i := range records {
		records[i] = book.Record{
			Title:  fmt.Sprintf("Book %d", i),
			Author: "Author",
			Shelf:  fmt.Sprintf("Shelf %d", i%3),
		}
	}

	n, err := r.ImportBooks(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)

	books, err := r.ListBooks(ctx, book.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, books, len(records))

	shelves, err := r.ListBookshelves(ctx, book.ShelvesByID)
	require.NoError(t, err)
	assert.Len(t, shelves, 3)
}

func BenchmarkImportBooks(b *testing.B) {
	ctx := context.Background()
	r := newTestRepo(b)

	records := make([]book.Record, 1000)
	for i := range records {
		records[i] = book.Record{Title: fmt.Sprintf("Book %d", i), Author: "Author", Shelf: "Bench"}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.ImportBooks(ctx, records); err != nil {
			b.Fatal(err)
		}
	}
}
