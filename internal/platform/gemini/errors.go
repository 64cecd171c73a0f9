package gemini

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"google.golang.org/genai"
)

// classifyError maps a raw Gemini client failure onto a generation error
// kind. Context errors pass through untouched so callers can still match
// them with errors.Is.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var genErr *generation.Error
	if errors.As(err, &genErr) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return generation.Wrap(kindForStatus(apiErr.Code), err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return generation.Wrap(generation.KindNetwork, err)
	}

	return generation.Wrap(generation.KindOf(err), err)
}

func kindForStatus(code int) generation.Kind {
	switch code {
	case http.StatusBadRequest:
		return generation.KindBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return generation.KindAuth
	case http.StatusTooManyRequests:
		return generation.KindRateLimited
	case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return generation.KindNetwork
	default:
		return generation.KindUnknown
	}
}
