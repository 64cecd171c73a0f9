package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/api/shared"
)

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", ErrInvalidRequest, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", ErrInvalidRequest, paramName)
	}

	return id, nil
}

// getPathInt extracts a non-negative integer from the URL path parameters.
func getPathInt(r *http.Request, paramName string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, paramName))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidRequest, paramName)
	}
	return n, nil
}

// decodeAndValidate reads the JSON body into v and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) error {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := shared.ValidateRequest(v); err != nil {
		return err
	}
	return nil
}
