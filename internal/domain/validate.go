package domain

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateStory checks the shape rules every generated story must satisfy:
// MinPages..MaxPages pages with text and an illustration prompt, exactly
// QuizLength quiz items, each with OptionsPerQuiz options that include the
// correct answer and a RelatedPageIndex that addresses an existing page.
func ValidateStory(g GeneratedStory) error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidStory)
	}

	if n := len(g.Pages); n < MinPages || n > MaxPages {
		return fmt.Errorf("%w: %d pages, want %d-%d", ErrInvalidStory, n, MinPages, MaxPages)
	}
	for i, p := range g.Pages {
		if len(p.Content) == 0 {
			return fmt.Errorf("%w: page %d has no content", ErrInvalidStory, i)
		}
		if strings.TrimSpace(p.ImagePrompt) == "" {
			return fmt.Errorf("%w: page %d has no image prompt", ErrInvalidStory, i)
		}
	}

	if len(g.Quiz) != QuizLength {
		return fmt.Errorf("%w: %d quiz items, want %d", ErrInvalidStory, len(g.Quiz), QuizLength)
	}
	for i, q := range g.Quiz {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: quiz %d has no question", ErrInvalidStory, i)
		}
		if len(q.Options) != OptionsPerQuiz {
			return fmt.Errorf("%w: quiz %d has %d options, want %d",
				ErrInvalidStory, i, len(q.Options), OptionsPerQuiz)
		}
		if !slices.Contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("%w: quiz %d correct answer %q is not an option",
				ErrInvalidStory, i, q.CorrectAnswer)
		}
		if q.RelatedPageIndex < 0 || q.RelatedPageIndex >= len(g.Pages) {
			return fmt.Errorf("%w: quiz %d references page %d of %d",
				ErrInvalidStory, i, q.RelatedPageIndex, len(g.Pages))
		}
	}

	return nil
}

// NormalizeStory trims the title and prompts and normalizes every page's
// pinyin annotations. Entries with an empty character are dropped.
func NormalizeStory(g GeneratedStory) GeneratedStory {
	out := GeneratedStory{
		Title: strings.TrimSpace(g.Title),
		Pages: make([]GeneratedPage, len(g.Pages)),
		Quiz:  make([]QuizItem, len(g.Quiz)),
	}
	for i, p := range g.Pages {
		content := make([]PinyinChar, 0, len(p.Content))
		for _, c := range p.Content {
			if c.Char == "" {
				continue
			}
			content = append(content, NormalizeChar(c))
		}
		out.Pages[i] = GeneratedPage{
			ImagePrompt: strings.TrimSpace(p.ImagePrompt),
			Content:     content,
		}
	}
	for i, q := range g.Quiz {
		q.Question = strings.TrimSpace(q.Question)
		q.Options = slices.Clone(q.Options)
		out.Quiz[i] = q
	}
	return out
}
