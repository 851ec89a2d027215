package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/htol/bookshelf/book"
	"github.com/htol/bookshelf/logger"
	"github.com/htol/bookshelf/service"
	"github.com/htol/bookshelf/validator"
)

func listBooksHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		form := filterForm{
			Title:     strings.TrimSpace(q.Get("title")),
			Author:    strings.TrimSpace(q.Get("author")),
			Bookshelf: strings.TrimSpace(q.Get("bookshelf")),
		}
		shelfID, err := validator.OptionalID(form.Bookshelf)
		if err != nil {
			renderError(w, r, err)
			return
		}

		books, err := svc.ListBooks(ctx, book.BookFilter{
			Title:       form.Title,
			Author:      form.Author,
			BookshelfID: shelfID,
		})
		if err != nil {
			renderError(w, r, err)
			return
		}
		shelves, err := svc.ListBookshelves(ctx, book.ShelvesByID)
		if err != nil {
			renderError(w, r, err)
			return
		}

		render(w, http.StatusOK, pageIndex, page{
			Title:       "Books",
			Flash:       popFlash(w, r),
			Books:       books,
			Bookshelves: shelves,
			Filter:      form,
		})
	})
}

func createBookHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderError(w, r, fmt.Errorf("%w: %v", validator.ErrMalformed, err))
			return
		}

		_, err := svc.CreateBook(r.Context(),
			r.PostForm.Get("title"),
			r.PostForm.Get("author"),
			formShelfID(r.PostForm.Get("bookshelf")),
		)
		if err != nil {
			renderError(w, r, err)
			return
		}

		setFlash(w, flashSuccess, "Book added successfully!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func addBookFormHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shelves, err := svc.ListBookshelves(r.Context(), book.ShelvesByIDDesc)
		if err != nil {
			renderError(w, r, err)
			return
		}
		render(w, http.StatusOK, pageAddBook, page{
			Title:       "Add book",
			Flash:       popFlash(w, r),
			Bookshelves: shelves,
		})
	})
}

func editBookFormHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validator.ParseID(r.PathValue("bookId"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		b, err := svc.GetBook(ctx, id)
		if err != nil {
			renderError(w, r, err)
			return
		}
		shelves, err := svc.ListBookshelves(ctx, book.ShelvesByIDDesc)
		if err != nil {
			renderError(w, r, err)
			return
		}

		render(w, http.StatusOK, pageEditBook, page{
			Title:       "Edit book",
			Flash:       popFlash(w, r),
			Book:        b,
			Bookshelves: shelves,
		})
	})
}

func updateBookHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := validator.ParseID(r.PathValue("bookId"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			renderError(w, r, fmt.Errorf("%w: %v", validator.ErrMalformed, err))
			return
		}

		_, err = svc.UpdateBook(r.Context(), id,
			r.PostForm.Get("title"),
			r.PostForm.Get("author"),
			formShelfID(r.PostForm.Get("bookshelf")),
		)
		if err != nil {
			renderError(w, r, err)
			return
		}

		setFlash(w, flashSuccess, "Book updated successfully!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func deleteBookHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := validator.ParseID(r.PathValue("bookId"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		if err := svc.DeleteBook(r.Context(), id); err != nil {
			renderError(w, r, err)
			return
		}

		setFlash(w, flashSuccess, "Book deleted.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func listBookshelvesHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shelves, err := svc.ListBookshelves(r.Context(), book.ShelvesByID)
		if err != nil {
			renderError(w, r, err)
			return
		}
		render(w, http.StatusOK, pageBookshelves, page{
			Title:       "Bookshelves",
			Flash:       popFlash(w, r),
			Bookshelves: shelves,
		})
	})
}

func createBookshelfHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderError(w, r, fmt.Errorf("%w: %v", validator.ErrMalformed, err))
			return
		}
		shelf, err := svc.CreateBookshelf(r.Context(), r.PostForm.Get("name"))
		if err != nil {
			renderError(w, r, err)
			return
		}

		setFlash(w, flashSuccess, fmt.Sprintf("Bookshelf %q created.", shelf.Name))
		http.Redirect(w, r, "/bookshelves", http.StatusSeeOther)
	})
}

func addToShoppingListHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderError(w, r, fmt.Errorf("%w: %v", validator.ErrMalformed, err))
			return
		}

		ids := make([]int64, 0, len(r.PostForm["book_id"]))
		for _, raw := range r.PostForm["book_id"] {
			id, err := validator.ParseID(raw)
			if err != nil {
				logger.Debug("Skipping shopping list id", "value", raw, "error", err)
				continue
			}
			ids = append(ids, id)
		}

		n, err := svc.AddToShoppingList(r.Context(), ids)
		if err != nil {
			renderError(w, r, err)
			return
		}

		if n == 0 {
			setFlash(w, flashError, "No books were added to the shopping list.")
		} else {
			setFlash(w, flashSuccess, fmt.Sprintf("Added %d book(s) to the shopping list.", n))
		}
		http.Redirect(w, r, "/shopping-list", http.StatusSeeOther)
	})
}

func shoppingListHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.ListShoppingList(r.Context())
		if err != nil {
			renderError(w, r, err)
			return
		}
		render(w, http.StatusOK, pageShoppingList, page{
			Title:   "Shopping list",
			Flash:   popFlash(w, r),
			Entries: entries,
		})
	})
}

// bookshelvesAPIHandler serves the shelf list as [{id, name}]
func bookshelvesAPIHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shelves, err := svc.ListBookshelves(r.Context(), book.ShelvesByID)
		if err != nil {
			respondWithError(w, "Failed to get bookshelves", err, http.StatusInternalServerError)
			return
		}
		respondWithJSON(w, shelves)
	})
}

func healthCheckHandler(svc *service.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check service health (database connection via service layer)
		if err := svc.Ping(r.Context()); err != nil {
			respondWithError(w, "service unavailable", err, http.StatusServiceUnavailable)
			return
		}
		respondWithJSON(w, map[string]string{"status": "healthy"})
	})
}

// formShelfID reads the optional shelf select. Anything that is not a valid
// id means "no bookshelf".
func formShelfID(raw string) *int64 {
	id, err := validator.OptionalID(raw)
	if err != nil {
		logger.Debug("Ignoring bookshelf value", "value", raw, "error", err)
		return nil
	}
	return id
}
