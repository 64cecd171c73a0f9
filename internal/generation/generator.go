package generation

import (
	"context"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
)

// StoryGenerator turns raw story text into a structured book.
type StoryGenerator interface {
	// GenerateStory issues one structured-generation request for rawText.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - rawText: Trimmed, non-empty story text
	//
	// Returns:
	//   - The validated, pinyin-normalized story
	//   - An *Error describing the failure kind (see errors.go)
	GenerateStory(ctx context.Context, rawText string) (*domain.GeneratedStory, error)
}

// Illustrator turns an English scene prompt into an image.
type Illustrator interface {
	// Illustrate returns the first image the backend produced for prompt,
	// encoded as a data:<mime>;base64,<data> URI.
	Illustrate(ctx context.Context, prompt string) (string, error)
}

// StoryGeneratorFunc adapts a function to StoryGenerator.
type StoryGeneratorFunc func(ctx context.Context, rawText string) (*domain.GeneratedStory, error)

// GenerateStory calls f.
func (f StoryGeneratorFunc) GenerateStory(ctx context.Context, rawText string) (*domain.GeneratedStory, error) {
	return f(ctx, rawText)
}

// IllustratorFunc adapts a function to Illustrator.
type IllustratorFunc func(ctx context.Context, prompt string) (string, error)

// Illustrate calls f.
func (f IllustratorFunc) Illustrate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
