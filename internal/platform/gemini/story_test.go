package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/domain/domaintest"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenerateStorySuccess(t *testing.T) {
	t.Parallel()

	story := domaintest.Story(5)
	story.Pages[0].Content = []domain.PinyinChar{{Char: "龟", Pinyin: ""}, {Char: "。", Pinyin: "x"}}
	models := &fakeModels{replies: []reply{{resp: textResponse(
		"```json\n"+storyJSON(t, story)+"\n```", genai.FinishReasonStop)}}}
	obs := &recordingObserver{}
	opts := testOptions(2)
	opts.Observer = obs

	g := NewStoryGenerator(models, "gemini-2.5-flash", opts)
	got, err := g.GenerateStory(context.Background(), "  龟兔赛跑  ")

	require.NoError(t, err)
	assert.Equal(t, "龟兔赛跑", got.Title)
	assert.Len(t, got.Pages, 5)
	assert.Len(t, got.Quiz, domain.QuizLength)
	assert.Equal(t, []domain.PinyinChar{{Char: "龟", Pinyin: "guī"}, {Char: "。"}}, got.Pages[0].Content)

	require.Equal(t, 1, models.callCount())
	call := models.calls[0]
	assert.Equal(t, "gemini-2.5-flash", call.model)
	require.Len(t, call.contents, 1)
	assert.Contains(t, call.contents[0].Parts[0].Text, `"龟兔赛跑"`)
	assert.Equal(t, "application/json", call.config.ResponseMIMEType)
	require.NotNil(t, call.config.ResponseSchema)
	assert.ElementsMatch(t, []string{"title", "pages", "quiz"}, call.config.ResponseSchema.Required)
	assert.Contains(t, call.config.SystemInstruction.Parts[0].Text, IllustrationStyle)

	assert.Equal(t, []error{nil}, obs.attempts)
	assert.Equal(t, []error{nil}, obs.calls)
}

func TestGenerateStoryRejectsEmptyText(t *testing.T) {
	t.Parallel()

	models := &fakeModels{}
	_, err := NewStoryGenerator(models, "m", testOptions(2)).GenerateStory(context.Background(), " \n ")

	assert.ErrorIs(t, err, domain.ErrEmptyText)
	assert.Zero(t, models.callCount())
}

func TestGenerateStoryFailures(t *testing.T) {
	t.Parallel()

	tooShort := domaintest.Story(4)
	tooShort.Pages = tooShort.Pages[:2]

	tests := []struct {
		name      string
		reply     reply
		wantKind  generation.Kind
		wantMsg   string
		wantCalls int
	}{
		{
			name:      "malformed json",
			reply:     reply{resp: textResponse(`{"title": "x", pages: }`, genai.FinishReasonStop)},
			wantKind:  generation.KindFormat,
			wantMsg:   generation.MsgFormat,
			wantCalls: 2,
		},
		{
			name:      "invalid structure",
			reply:     reply{resp: textResponse(storyJSON(t, tooShort), genai.FinishReasonStop)},
			wantKind:  generation.KindFormat,
			wantMsg:   generation.MsgFormat,
			wantCalls: 2,
		},
		{
			name:      "interrupted without text",
			reply:     reply{resp: textResponse("", genai.FinishReasonSafety)},
			wantKind:  generation.KindInterrupted,
			wantMsg:   "故事生成中断: SAFETY",
			wantCalls: 2,
		},
		{
			name:      "empty output",
			reply:     reply{resp: &genai.GenerateContentResponse{}},
			wantKind:  generation.KindEmpty,
			wantMsg:   generation.MsgEmpty,
			wantCalls: 2,
		},
		{
			name:      "bad request is permanent",
			reply:     reply{err: genai.APIError{Code: 400, Message: "API key not valid", Status: "INVALID_ARGUMENT"}},
			wantKind:  generation.KindBadRequest,
			wantMsg:   "Error 400",
			wantCalls: 1,
		},
		{
			name:      "forbidden is permanent",
			reply:     reply{err: genai.APIError{Code: 403, Message: "permission denied", Status: "PERMISSION_DENIED"}},
			wantKind:  generation.KindAuth,
			wantMsg:   "Error 403",
			wantCalls: 1,
		},
		{
			name:      "rate limited is retried",
			reply:     reply{err: genai.APIError{Code: 429, Message: "quota", Status: "RESOURCE_EXHAUSTED"}},
			wantKind:  generation.KindRateLimited,
			wantMsg:   "429",
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			models := &fakeModels{replies: []reply{tt.reply}}
			_, err := NewStoryGenerator(models, "m", testOptions(2)).GenerateStory(context.Background(), "龟兔赛跑")

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, generation.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, tt.wantCalls, models.callCount())
		})
	}
}

func TestGenerateStoryParsesTextEvenWhenTruncated(t *testing.T) {
	t.Parallel()

	// Text takes precedence over the finish reason: a parseable reply wins.
	models := &fakeModels{replies: []reply{{resp: textResponse(
		storyJSON(t, domaintest.Story(4)), genai.FinishReasonMaxTokens)}}}

	got, err := NewStoryGenerator(models, "m", testOptions(2)).GenerateStory(context.Background(), "龟兔赛跑")

	require.NoError(t, err)
	assert.Len(t, got.Pages, 4)
}

func TestGenerateStoryRecoversOnRetry(t *testing.T) {
	t.Parallel()

	models := &fakeModels{replies: []reply{
		{err: errors.New("Rpc failed due to xhr error")},
		{resp: textResponse("Here you go: "+storyJSON(t, domaintest.Story(6))+" Have fun!", genai.FinishReasonStop)},
	}}
	obs := &recordingObserver{}
	opts := testOptions(2)
	opts.Observer = obs

	got, err := NewStoryGenerator(models, "m", opts).GenerateStory(context.Background(), "龟兔赛跑")

	require.NoError(t, err)
	assert.Len(t, got.Pages, 6)
	require.Len(t, obs.attempts, 2)
	assert.Equal(t, generation.KindNetwork, generation.KindOf(obs.attempts[0]))
	assert.NoError(t, obs.attempts[1])
}

func TestStoryPromptQuotesText(t *testing.T) {
	t.Parallel()

	p := storyPrompt("小兔子说：\"你好\"")
	assert.True(t, strings.HasPrefix(p, "Here is the story text: "))
	assert.Contains(t, p, `小兔子说：\"你好\"`)
}
