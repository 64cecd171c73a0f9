package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/pinyin-picturebook/internal/api/shared"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
)

// MaxListLimit caps the limit query parameter of the book list.
const MaxListLimit = 200

// BookHandler serves the archive of generated books.
type BookHandler struct {
	books store.BookStore
}

// NewBookHandler creates a BookHandler over books.
func NewBookHandler(books store.BookStore) *BookHandler {
	return &BookHandler{books: books}
}

// Routes registers the book endpoints on r.
func (h *BookHandler) Routes(r chi.Router) {
	r.Get("/books", h.ListBooks)
	r.Get("/books/{id}", h.GetBook)
}

// ListBooks returns book summaries, newest first. An optional limit query
// parameter bounds the result.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			HandleAPIError(w, r, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidRequest, MaxListLimit))
			return
		}
		limit = n
	}

	books, err := h.books.List(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, BookListResponse{Books: books})
}

// GetBook returns one archived book with its stored illustrations.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	book, err := h.books.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, book)
}
