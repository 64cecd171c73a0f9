package gemini

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/phrazzld/pinyin-picturebook/internal/redact"
	"google.golang.org/genai"
)

const defaultImageMIME = "image/png"

// Illustrator implements generation.Illustrator with a Gemini image model.
type Illustrator struct {
	models ContentGenerator
	model  string
	opts   Options
}

var _ generation.Illustrator = (*Illustrator)(nil)

// NewIllustrator creates an Illustrator for the given image model.
func NewIllustrator(models ContentGenerator, model string, opts Options) *Illustrator {
	return &Illustrator{models: models, model: model, opts: opts.withDefaults()}
}

// Illustrate generates one image for prompt and returns it as a data URI.
func (il *Illustrator) Illustrate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", domain.ErrEmptyPrompt
	}

	uri, err := call(ctx, il.opts, OperationIllustration, func(ctx context.Context) (string, error) {
		return il.illustrateOnce(ctx, prompt)
	})
	if err != nil {
		il.opts.loggerFor(ctx).WarnContext(ctx, "illustration failed",
			"kind", generation.KindOf(err),
			"error", redact.Error(err))
		return "", err
	}
	return uri, nil
}

func (il *Illustrator) illustrateOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := il.models.GenerateContent(ctx, il.model, genai.Text(prompt), illustrationConfig())
	if err != nil {
		return "", classifyError(err)
	}

	blob := firstInlineImage(resp)
	if blob == nil {
		return "", generation.NewNoImageError()
	}
	return DataURI(blob.MIMEType, blob.Data), nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) *genai.Blob {
	c := firstCandidate(resp)
	if c == nil || c.Content == nil {
		return nil
	}
	for _, p := range c.Content.Parts {
		if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData
		}
	}
	return nil
}

// DataURI encodes data as a data:<mime>;base64,<payload> URI. An empty MIME
// type is reported as image/png.
func DataURI(mime string, data []byte) string {
	if mime == "" {
		mime = defaultImageMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
