package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// BookStore defines the interface for archiving generated books.
type BookStore interface {
	// Create saves a new book together with its pages and quiz.
	// Returns validation errors from domain.Book if the book is invalid.
	// Returns ErrDuplicate if a book with the same ID exists.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book with every stored illustration.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// List returns summaries of the most recent books, newest first.
	List(ctx context.Context, limit int) ([]domain.BookSummary, error)

	// SavePageImage stores the illustration for one page, replacing any
	// earlier image. Returns ErrBookNotFound if the book or page does not
	// exist.
	SavePageImage(ctx context.Context, id uuid.UUID, page int, imageData string) error
}
