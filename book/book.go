package book

// Bookshelf is a named grouping of books. Books reference their shelf, the
// shelf does not list its books.
type Bookshelf struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is a catalog entry. A nil Bookshelf means the book is unshelved.
type Book struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Bookshelf *Bookshelf `json:"bookshelf"`
}

// ShelfName returns the shelf name or an empty string for unshelved books
func (b Book) ShelfName() string {
	if b.Bookshelf == nil {
		return ""
	}
	return b.Bookshelf.Name
}

// ShoppingListEntry records the intent to acquire a book. Several entries
// may point at the same book.
type ShoppingListEntry struct {
	ID   int64 `json:"id"`
	Book Book  `json:"book"`
}

// BookFilter narrows a book listing. Empty strings and a nil BookshelfID
// disable the corresponding condition; set conditions are combined with AND.
type BookFilter struct {
	Title       string
	Author      string
	BookshelfID *int64
}

// IsEmpty reports whether no condition is set
func (f BookFilter) IsEmpty() bool {
	return f.Title == "" && f.Author == "" && f.BookshelfID == nil
}

// ShelfOrder selects the ordering of a bookshelf listing
type ShelfOrder int

const (
	// ShelvesByID lists shelves in creation order
	ShelvesByID ShelfOrder = iota
	// ShelvesByIDDesc lists the newest shelves first
	ShelvesByIDDesc
)

// Record is a book to be imported in bulk. Shelf is a bookshelf name; an
// unknown name creates the shelf.
type Record struct {
	Title  string
	Author string
	Shelf  string
}
