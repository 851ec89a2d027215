package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/htol/bookshelf/book"
	"github.com/htol/bookshelf/logger"
	"github.com/htol/bookshelf/middleware"
	"github.com/htol/bookshelf/repo"
	"github.com/htol/bookshelf/validator"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex        = "index.html"
	pageAddBook      = "add_book.html"
	pageEditBook     = "edit_book.html"
	pageBookshelves  = "bookshelves.html"
	pageShoppingList = "shopping_list.html"
	pageError        = "error.html"
)

var pages = parsePages(pageIndex, pageAddBook, pageEditBook, pageBookshelves, pageShoppingList, pageError)

func parsePages(names ...string) map[string]*template.Template {
	m := make(map[string]*template.Template, len(names))
	for _, name := range names {
		m[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return m
}

// page is the data every view is rendered with
type page struct {
	Title       string
	Flash       *flash
	Books       []book.Book
	Bookshelves []book.Bookshelf
	Book        *book.Book
	Entries     []book.ShoppingListEntry
	Filter      filterForm
	Error       string
}

// filterForm echoes the listing query parameters back into the filter form
type filterForm struct {
	Title     string
	Author    string
	Bookshelf string
}

// render executes the named page into a buffer first so a template failure
// still produces a clean 500
func render(w http.ResponseWriter, status int, name string, data page) {
	tmpl, ok := pages[name]
	if !ok {
		logger.Error("Unknown page", "page", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logger.Error("Failed to render page", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("Failed to write page", "page", name, "error", err)
	}
}

// renderError maps err to a status code and renders the error page
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var (
		status int
		msg    string
	)
	switch {
	case validator.IsValidation(err):
		status, msg = http.StatusBadRequest, err.Error()
		logger.Warn("Validation error", "error", err, "request_id", requestID)
	case errors.Is(err, repo.ErrNotFound):
		status, msg = http.StatusNotFound, "The requested book does not exist."
		logger.Warn("Not found", "path", r.URL.Path, "request_id", requestID)
	default:
		status, msg = http.StatusInternalServerError, "Something went wrong. Please try again."
		logger.Error("Request failed", "error", err, "path", r.URL.Path, "request_id", requestID)
	}

	render(w, status, pageError, page{
		Title: http.StatusText(status),
		Error: msg,
	})
}
