package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/session"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		message  string
	}{
		{"session not found", session.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
		{"book not found", fmt.Errorf("get: %w", store.ErrBookNotFound), http.StatusNotFound, "Book not found"},
		{"invalid transition", session.ErrInvalidTransition, http.StatusConflict, "Action not allowed in the current session state"},
		{"session closed", session.ErrSessionClosed, http.StatusConflict, "Session closed"},
		{"empty text", domain.ErrEmptyText, http.StatusBadRequest, "Story text is required"},
		{"page out of range", domain.ErrPageOutOfRange, http.StatusBadRequest, "Page index out of range"},
		{"unknown option", session.ErrUnknownOption, http.StatusBadRequest, "Answer is not one of the options"},
		{"invalid request", fmt.Errorf("%w: bad json", ErrInvalidRequest), http.StatusBadRequest, "Invalid request format"},
		{"domain validation", fmt.Errorf("%w: no pages", domain.ErrValidation), http.StatusBadRequest, "Invalid entity data"},
		{"archive unavailable", session.ErrArchiveUnavailable, http.StatusServiceUnavailable, "Book archive unavailable"},
		{"unknown", errors.New("connection reset by peer"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.message, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestGetSafeErrorMessageNil(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestSanitizeValidationError(t *testing.T) {
	v := validator.New()

	t.Run("required field", func(t *testing.T) {
		err := v.Struct(CreateStoryRequest{})
		require.Error(t, err)

		assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
		assert.Equal(t, "Invalid Text: required field", SanitizeValidationError(err))
		assert.NotContains(t, GetSafeErrorMessage(err), "CreateStoryRequest")
	})

	t.Run("too long", func(t *testing.T) {
		err := v.Struct(AnswerRequest{Option: "ABCDEFGHIJ"})
		require.Error(t, err)
		assert.Equal(t, "Invalid Option: too long", SanitizeValidationError(err))
	})

	t.Run("not a validation error", func(t *testing.T) {
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
	})
}
