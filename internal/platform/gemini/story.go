package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
	"google.golang.org/genai"
)

// StoryGenerator implements generation.StoryGenerator with a structured
// Gemini text request.
type StoryGenerator struct {
	models ContentGenerator
	model  string
	opts   Options
}

var _ generation.StoryGenerator = (*StoryGenerator)(nil)

// NewStoryGenerator creates a StoryGenerator for the given text model.
func NewStoryGenerator(models ContentGenerator, model string, opts Options) *StoryGenerator {
	return &StoryGenerator{models: models, model: model, opts: opts.withDefaults()}
}

// GenerateStory turns rawText into a validated story. Failures are
// *generation.Error values; the whole request, parse and validation sequence
// is retried under the configured policy.
func (g *StoryGenerator) GenerateStory(ctx context.Context, rawText string) (*domain.GeneratedStory, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, domain.ErrEmptyText
	}

	log := g.opts.loggerFor(ctx)

	story, err := call(ctx, g.opts, OperationStory, func(ctx context.Context) (*domain.GeneratedStory, error) {
		return g.generateOnce(ctx, rawText)
	})
	if err != nil {
		log.ErrorContext(ctx, "story generation failed",
			"kind", generation.KindOf(err),
			"error", redact.Error(err))
		return nil, err
	}

	log.InfoContext(ctx, "story generated",
		"title", story.Title,
		"pages", len(story.Pages),
		"quiz_items", len(story.Quiz))
	return story, nil
}

func (g *StoryGenerator) generateOnce(ctx context.Context, rawText string) (*domain.GeneratedStory, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(storyPrompt(rawText)), storyConfig())
	if err != nil {
		return nil, classifyError(err)
	}

	if jsonText := strings.TrimSpace(extractJSON(responseText(resp))); jsonText != "" {
		return parseStory(jsonText)
	}

	if reason, ok := abnormalFinish(resp); ok {
		return nil, generation.NewInterruptedError(reason)
	}
	return nil, generation.NewEmptyError()
}

func parseStory(jsonText string) (*domain.GeneratedStory, error) {
	var story domain.GeneratedStory
	if err := json.Unmarshal([]byte(jsonText), &story); err != nil {
		return nil, generation.NewFormatError(fmt.Errorf("decode story: %w", err))
	}

	story = domain.NormalizeStory(story)
	if err := domain.ValidateStory(story); err != nil {
		return nil, generation.NewFormatError(err)
	}
	return &story, nil
}
