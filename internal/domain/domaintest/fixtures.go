// Package domaintest provides story fixtures shared by tests across packages.
package domaintest

import "github.com/phrazzld/pinyin-picturebook/internal/domain"

// Chars annotates text rune by rune with the given readings. Punctuation
// runes take an empty reading.
func Chars(text string, readings ...string) []domain.PinyinChar {
	out := make([]domain.PinyinChar, 0, len(readings))
	i := 0
	for _, r := range text {
		c := domain.PinyinChar{Char: string(r)}
		if i < len(readings) {
			c.Pinyin = readings[i]
		}
		i++
		out = append(out, c)
	}
	return out
}

// Story returns a valid generated story with the given number of pages.
// The quiz answers are "A", "B" and "C".
func Story(pages int) domain.GeneratedStory {
	g := domain.GeneratedStory{Title: "龟兔赛跑"}
	for i := 0; i < pages; i++ {
		g.Pages = append(g.Pages, domain.GeneratedPage{
			ImagePrompt: "a rabbit and a tortoise racing, colorful, vivid",
			Content:     Chars("兔子跑。", "tù", "zi", "pǎo", ""),
		})
	}
	answers := []string{"A", "B", "C"}
	for i, a := range answers {
		g.Quiz = append(g.Quiz, domain.QuizItem{
			Question:         "谁赢了？",
			Options:          []string{"A", "B", "C", "D"},
			CorrectAnswer:    a,
			RelatedPageIndex: i % pages,
		})
	}
	return g
}
