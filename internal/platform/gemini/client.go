package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/pinyin-picturebook/internal/config"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/platform/logger"
	"github.com/phrazzld/pinyin-picturebook/internal/retry"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of *genai.Models the adapters use.
// (*genai.Client).Models satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Observer receives per-attempt and per-call measurements.
type Observer interface {
	// ObserveAttempt is called after every backend attempt; err is nil on success.
	ObserveAttempt(operation string, err error)
	// ObserveCall is called once per retried call with its total duration.
	ObserveCall(operation string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, error)             {}
func (nopObserver) ObserveCall(string, time.Duration, error) {}

// Operation names used in logs and metrics.
const (
	OperationStory        = "story"
	OperationIllustration = "illustration"
)

// Options holds settings shared by both adapters.
type Options struct {
	Logger   *slog.Logger
	Policy   retry.Policy
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o
}

// loggerFor prefers the logger carried by ctx.
func (o Options) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := logger.FromContext(ctx); ok {
		return l
	}
	return o.Logger
}

// ErrMissingAPIKey is reported by every call when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini API key is not configured")

// NewModels returns the Gemini model service for cfg. Without an API key
// in cfg or the environment it returns a generator whose every call fails
// with an authentication error, so a missing key surfaces on first use.
func NewModels(ctx context.Context, cfg config.LLMConfig) (ContentGenerator, error) {
	if cfg.GeminiAPIKey == "" && os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return missingKeyModels{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client.Models, nil
}

type missingKeyModels struct{}

func (missingKeyModels) GenerateContent(
	context.Context, string, []*genai.Content, *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	return nil, generation.Wrap(generation.KindAuth, ErrMissingAPIKey)
}

// PolicyFromConfig builds the retry policy configured for backend calls.
func PolicyFromConfig(cfg config.LLMConfig) retry.Policy {
	return retry.Policy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay}
}

// call runs op under the retry policy, reporting attempts and duration.
func call[T any](ctx context.Context, o Options, operation string, op func(ctx context.Context) (T, error)) (T, error) {
	p := o.Policy
	p.Operation = operation
	p.Logger = o.loggerFor(ctx)
	p.OnAttempt = func(_ int, err error) {
		o.Observer.ObserveAttempt(operation, err)
	}

	start := time.Now()
	v, err := retry.Do(ctx, p, op)
	o.Observer.ObserveCall(operation, time.Since(start), err)
	return v, err
}
