package store

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
)

// MemoryBookStore keeps books in process memory. It is used when no
// database is configured and in tests.
type MemoryBookStore struct {
	mu     sync.RWMutex
	books  map[uuid.UUID]*domain.Book
	logger *slog.Logger
}

var _ BookStore = (*MemoryBookStore)(nil)

// NewMemoryBookStore creates an empty store. If logger is nil, slog.Default() is used.
func NewMemoryBookStore(logger *slog.Logger) *MemoryBookStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryBookStore{
		books:  make(map[uuid.UUID]*domain.Book),
		logger: logger.With(slog.String("component", "memory_book_store")),
	}
}

// Create implements BookStore.Create.
func (s *MemoryBookStore) Create(ctx context.Context, book *domain.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.ID]; ok {
		return fmt.Errorf("%w: book %s", ErrDuplicate, book.ID)
	}
	s.books[book.ID] = cloneBook(book)

	s.logger.Debug("book created", slog.String("book_id", book.ID.String()))
	return nil
}

// GetByID implements BookStore.GetByID.
func (s *MemoryBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return cloneBook(b), nil
}

// List implements BookStore.List.
func (s *MemoryBookStore) List(ctx context.Context, limit int) ([]domain.BookSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	summaries := make([]domain.BookSummary, 0, len(s.books))
	for _, b := range s.books {
		summaries = append(summaries, b.Summary())
	}
	s.mu.RUnlock()

	slices.SortFunc(summaries, func(a, b domain.BookSummary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// SavePageImage implements BookStore.SavePageImage.
func (s *MemoryBookStore) SavePageImage(ctx context.Context, id uuid.UUID, page int, imageData string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok || page < 0 || page >= len(b.Story.Pages) {
		return ErrBookNotFound
	}
	if b.Images == nil {
		b.Images = make(map[int]string)
	}
	b.Images[page] = imageData
	return nil
}

// cloneBook copies the mutable parts of b. The story itself is never
// modified after creation and is shared.
func cloneBook(b *domain.Book) *domain.Book {
	c := *b
	c.Images = maps.Clone(b.Images)
	if c.Images == nil {
		c.Images = make(map[int]string)
	}
	return &c
}
