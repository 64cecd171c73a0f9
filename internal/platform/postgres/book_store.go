package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
)

// BookStore implements store.BookStore on PostgreSQL. Pages live in their
// own table so illustrations can be saved one page at a time.
type BookStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.BookStore = (*BookStore)(nil)

// NewBookStore creates a BookStore. The caller owns db.
// If logger is nil, a default logger will be used.
func NewBookStore(db *sql.DB, logger *slog.Logger) *BookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

func (s *BookStore) log(ctx context.Context) *slog.Logger {
	if l, ok := logger.FromContext(ctx); ok {
		return l.With(slog.String("component", "book_store"))
	}
	return s.logger
}

// Create implements store.BookStore.Create.
// The book row and all page rows are written in one transaction.
func (s *BookStore) Create(ctx context.Context, book *domain.Book) error {
	log := s.log(ctx)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during create",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	quiz, err := json.Marshal(book.Story.Quiz)
	if err != nil {
		return fmt.Errorf("failed to encode quiz: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return insertBook(ctx, tx, book, string(quiz))
	})
	if err != nil {
		log.Error("failed to create book",
			slog.String("error", redact.Error(err)),
			slog.String("book_id", book.ID.String()))
		return err
	}

	log.Info("book created",
		slog.String("book_id", book.ID.String()),
		slog.Int("pages", len(book.Story.Pages)))
	return nil
}

// insertBook writes the book row and one row per page through q.
func insertBook(ctx context.Context, q store.DBTX, book *domain.Book, quiz string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO books (id, title, source_text, quiz, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, book.ID, book.Story.Title, book.SourceText, quiz, book.CreatedAt)
	if err != nil {
		return MapError(err)
	}

	for i, p := range book.Story.Pages {
		content, err := json.Marshal(p.Content)
		if err != nil {
			return fmt.Errorf("failed to encode page %d: %w", i, err)
		}
		var image sql.NullString
		if img, ok := book.Images[i]; ok {
			image = sql.NullString{String: img, Valid: true}
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO book_pages (book_id, page_index, image_prompt, content, image_data)
			VALUES ($1, $2, $3, $4, $5)
		`, book.ID, i, p.ImagePrompt, string(content), image)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

// GetByID implements store.BookStore.GetByID.
func (s *BookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	log := s.log(ctx)

	var (
		book domain.Book
		quiz []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, source_text, quiz, created_at
		FROM books
		WHERE id = $1
	`, id).Scan(&book.ID, &book.Story.Title, &book.SourceText, &quiz, &book.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book",
			slog.String("error", redact.Error(err)),
			slog.String("book_id", id.String()))
		return nil, MapError(err)
	}
	if err := json.Unmarshal(quiz, &book.Story.Quiz); err != nil {
		return nil, fmt.Errorf("failed to decode quiz of book %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT page_index, image_prompt, content, image_data
		FROM book_pages
		WHERE book_id = $1
		ORDER BY page_index
	`, id)
	if err != nil {
		log.Error("failed to get book pages",
			slog.String("error", redact.Error(err)),
			slog.String("book_id", id.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	book.Images = make(map[int]string)
	for rows.Next() {
		var (
			index   int
			page    domain.GeneratedPage
			content []byte
			image   sql.NullString
		)
		if err := rows.Scan(&index, &page.ImagePrompt, &content, &image); err != nil {
			return nil, fmt.Errorf("failed to scan page of book %s: %w", id, err)
		}
		if err := json.Unmarshal(content, &page.Content); err != nil {
			return nil, fmt.Errorf("failed to decode page %d of book %s: %w", index, id, err)
		}
		book.Story.Pages = append(book.Story.Pages, page)
		if image.Valid {
			book.Images[index] = image.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &book, nil
}

// List implements store.BookStore.List.
func (s *BookStore) List(ctx context.Context, limit int) ([]domain.BookSummary, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.created_at,
		       (SELECT count(*) FROM book_pages p WHERE p.book_id = b.id)
		FROM books b
		ORDER BY b.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		s.log(ctx).Error("failed to list books", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]domain.BookSummary, 0)
	for rows.Next() {
		var b domain.BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.CreatedAt, &b.PageCount); err != nil {
			return nil, fmt.Errorf("failed to scan book summary: %w", err)
		}
		summaries = append(summaries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return summaries, nil
}

// SavePageImage implements store.BookStore.SavePageImage.
func (s *BookStore) SavePageImage(ctx context.Context, id uuid.UUID, page int, imageData string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE book_pages
		SET image_data = $3, updated_at = now()
		WHERE book_id = $1 AND page_index = $2
	`, id, page, imageData)
	if err != nil {
		s.log(ctx).Error("failed to save page image",
			slog.String("error", redact.Error(err)),
			slog.String("book_id", id.String()),
			slog.Int("page", page))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrBookNotFound)
}
