package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyText is returned when story text is empty after trimming.
	ErrEmptyText = errors.New("story text cannot be empty")

	// ErrEmptyPrompt is returned when an illustration prompt is empty.
	ErrEmptyPrompt = errors.New("illustration prompt cannot be empty")

	// ErrInvalidStory is returned when generated story data breaks the
	// page, quiz or option shape rules.
	ErrInvalidStory = errors.New("invalid story structure")

	// ErrPageOutOfRange is returned when a page index does not exist.
	ErrPageOutOfRange = errors.New("page index out of range")
)
