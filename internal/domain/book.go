package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Book is an archived story together with the illustrations produced for it.
// Images maps page ID to a data URI.
type Book struct {
	ID         uuid.UUID      `json:"id"`
	SourceText string         `json:"sourceText"`
	Story      GeneratedStory `json:"story"`
	Images     map[int]string `json:"images,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// BookSummary is the list view of an archived book.
type BookSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	PageCount int       `json:"pageCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBook creates a Book for a validated story.
func NewBook(sourceText string, story GeneratedStory) (*Book, error) {
	b := &Book{
		ID:         uuid.New(),
		SourceText: strings.TrimSpace(sourceText),
		Story:      story,
		Images:     map[int]string{},
		CreatedAt:  time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the book has an ID, source text and a well-formed story.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return fmt.Errorf("%w: book ID cannot be empty", ErrValidation)
	}
	if b.SourceText == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyText)
	}
	if err := ValidateStory(b.Story); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// Summary returns the list view of b.
func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:        b.ID,
		Title:     b.Story.Title,
		PageCount: len(b.Story.Pages),
		CreatedAt: b.CreatedAt,
	}
}

// StoryData materializes the book for reading, attaching stored images.
func (b *Book) StoryData() *StoryData {
	s := NewStoryData(b.Story)
	for i := range s.Pages {
		if img, ok := b.Images[i]; ok {
			s.Pages[i].ImageData = img
		}
	}
	return s
}
