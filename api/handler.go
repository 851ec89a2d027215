package api

import (
	"net/http"

	"github.com/htol/bookshelf/middleware"
	"github.com/htol/bookshelf/service"
)

// NewHandler creates and returns the main HTTP handler (router) for the application
func NewHandler(svc *service.Service) http.Handler {
	mux := http.NewServeMux()

	// Catalog pages
	mux.Handle("GET /{$}", listBooksHandler(svc))
	mux.Handle("POST /{$}", createBookHandler(svc))
	mux.Handle("GET /add", addBookFormHandler(svc))
	mux.Handle("GET /edit/{bookId}", editBookFormHandler(svc))
	mux.Handle("POST /edit/{bookId}", updateBookHandler(svc))
	mux.Handle("POST /delete/{bookId}", deleteBookHandler(svc))
	mux.Handle("GET /bookshelves", listBookshelvesHandler(svc))
	mux.Handle("POST /bookshelves", createBookshelfHandler(svc))
	mux.Handle("GET /shopping-list", shoppingListHandler(svc))
	mux.Handle("POST /shopping-list/add", addToShoppingListHandler(svc))

	// JSON routes
	mux.Handle("GET /api/bookshelves", withCORS(bookshelvesAPIHandler(svc)))
	mux.Handle("OPTIONS /api/bookshelves", withCORS(bookshelvesAPIHandler(svc)))
	mux.Handle("GET /health", healthCheckHandler(svc))

	// Apply middleware chain
	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
	)

	return chain(mux)
}
