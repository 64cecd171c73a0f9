package gemini

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/retry"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type reply struct {
	resp *genai.GenerateContentResponse
	err  error
}

type recordedCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeModels replays scripted replies in order; the last one repeats.
type fakeModels struct {
	mu      sync.Mutex
	replies []reply
	calls   []recordedCall
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{model: model, contents: contents, config: config})
	i := len(f.calls) - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i].resp, f.replies[i].err
}

func (f *fakeModels) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func textResponse(text string, reason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: reason,
		}},
	}
}

func storyJSON(t *testing.T, g domain.GeneratedStory) string {
	t.Helper()
	b, err := json.Marshal(g)
	require.NoError(t, err)
	return string(b)
}

func testOptions(attempts int) Options {
	return Options{Policy: retry.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond}}
}

type recordingObserver struct {
	mu       sync.Mutex
	attempts []error
	calls    []error
}

func (o *recordingObserver) ObserveAttempt(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts = append(o.attempts, err)
}

func (o *recordingObserver) ObserveCall(_ string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, err)
}
