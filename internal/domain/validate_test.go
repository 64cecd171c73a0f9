package domain_test

import (
	"testing"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/domain/domaintest"
	"github.com/stretchr/testify/assert"
)

func TestValidateStory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(g *domain.GeneratedStory)
		wantErr bool
	}{
		{name: "valid four pages", mutate: func(g *domain.GeneratedStory) {}},
		{name: "valid six pages", mutate: func(g *domain.GeneratedStory) {
			g.Pages = append(g.Pages, g.Pages[0], g.Pages[0])
		}},
		{name: "missing title", mutate: func(g *domain.GeneratedStory) { g.Title = " " }, wantErr: true},
		{name: "three pages", mutate: func(g *domain.GeneratedStory) { g.Pages = g.Pages[:3] }, wantErr: true},
		{name: "seven pages", mutate: func(g *domain.GeneratedStory) {
			g.Pages = append(g.Pages, g.Pages[0], g.Pages[0], g.Pages[0])
		}, wantErr: true},
		{name: "empty page content", mutate: func(g *domain.GeneratedStory) { g.Pages[2].Content = nil }, wantErr: true},
		{name: "empty image prompt", mutate: func(g *domain.GeneratedStory) { g.Pages[0].ImagePrompt = "" }, wantErr: true},
		{name: "two quiz items", mutate: func(g *domain.GeneratedStory) { g.Quiz = g.Quiz[:2] }, wantErr: true},
		{name: "three options", mutate: func(g *domain.GeneratedStory) { g.Quiz[1].Options = []string{"A", "B", "C"} }, wantErr: true},
		{name: "answer not an option", mutate: func(g *domain.GeneratedStory) { g.Quiz[0].CorrectAnswer = "Z" }, wantErr: true},
		{name: "related page out of range", mutate: func(g *domain.GeneratedStory) { g.Quiz[2].RelatedPageIndex = 4 }, wantErr: true},
		{name: "negative related page", mutate: func(g *domain.GeneratedStory) { g.Quiz[2].RelatedPageIndex = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := domaintest.Story(4)
			tt.mutate(&g)

			err := domain.ValidateStory(g)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidStory)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeStory(t *testing.T) {
	t.Parallel()

	g := domain.GeneratedStory{
		Title: "  龟兔赛跑 ",
		Pages: []domain.GeneratedPage{{
			ImagePrompt: " a tortoise ",
			Content: []domain.PinyinChar{
				{Char: "龟", Pinyin: "guī"},
				{Char: "", Pinyin: "x"},
				{Char: "兔", Pinyin: ""},
				{Char: "，", Pinyin: "dòu"},
				{Char: "3", Pinyin: ""},
			},
		}},
	}

	out := domain.NormalizeStory(g)

	assert.Equal(t, "龟兔赛跑", out.Title)
	assert.Equal(t, "a tortoise", out.Pages[0].ImagePrompt)
	assert.Equal(t, []domain.PinyinChar{
		{Char: "龟", Pinyin: "guī"},
		{Char: "兔", Pinyin: "tù"},
		{Char: "，", Pinyin: ""},
		{Char: "3", Pinyin: "3"},
	}, out.Pages[0].Content)
	assert.Equal(t, " a tortoise ", g.Pages[0].ImagePrompt, "input must not change")
}
