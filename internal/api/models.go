package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
)

// CreateStoryRequest is the payload for generating a book from raw text.
type CreateStoryRequest struct {
	Text string `json:"text" validate:"required"`
}

// OpenBookRequest is the payload for reading an archived book.
type OpenBookRequest struct {
	BookID uuid.UUID `json:"bookId" validate:"required"`
}

// NavigateRequest moves the current page by Delta, usually -1 or +1.
type NavigateRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

// AnswerRequest selects a quiz option label.
type AnswerRequest struct {
	Option string `json:"option" validate:"required"`
}

// BookListResponse lists archived books, newest first.
type BookListResponse struct {
	Books []domain.BookSummary `json:"books"`
}
