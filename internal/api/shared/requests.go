package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxRequestBodyBytes bounds every JSON request body. Story texts are short;
// a megabyte leaves ample room.
const MaxRequestBodyBytes = 1 << 20

var validate = validator.New()

// DecodeJSON decodes the request body into v. An empty body decodes to the
// zero value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ValidateRequest validates v using its struct tags, or its own Validate
// method when it has one.
func ValidateRequest(v any) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
