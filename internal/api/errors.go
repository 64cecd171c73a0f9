package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/pinyin-picturebook/internal/api/shared"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/session"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
)

// ErrInvalidRequest marks malformed request bodies and path parameters.
var ErrInvalidRequest = errors.New("invalid request")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrPageOutOfRange),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, session.ErrUnknownOption),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, session.ErrArchiveUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrBookNotFound):
		return "Book not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, session.ErrSessionClosed):
		return "Session closed"
	case errors.Is(err, session.ErrInvalidTransition):
		return "Action not allowed in the current session state"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrEmptyText):
		return "Story text is required"
	case errors.Is(err, domain.ErrPageOutOfRange):
		return "Page index out of range"
	case errors.Is(err, session.ErrUnknownOption):
		return "Answer is not one of the options"
	case errors.Is(err, ErrInvalidRequest):
		return "Invalid request format"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, session.ErrArchiveUnavailable):
		return "Book archive unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator failures into a message naming the
// first offending field without exposing struct names.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	if fe.Tag() == "" {
		return fmt.Sprintf("Invalid %s", fe.Field())
	}
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs it.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
