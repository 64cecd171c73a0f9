package domain

import "strings"

// Story shape rules.
const (
	MinPages       = 4
	MaxPages       = 6
	QuizLength     = 3
	OptionsPerQuiz = 4
)

// PinyinChar is one character of page text with its pinyin annotation.
// An empty Pinyin marks punctuation.
type PinyinChar struct {
	Char   string `json:"char"`
	Pinyin string `json:"pinyin"`
}

// IsPunctuation reports whether the character is rendered without annotation.
func (c PinyinChar) IsPunctuation() bool {
	return strings.TrimSpace(c.Pinyin) == ""
}

// GeneratedPage is one page as returned by the story model.
type GeneratedPage struct {
	ImagePrompt string       `json:"imagePrompt"`
	Content     []PinyinChar `json:"content"`
}

// QuizItem is a picture-based multiple-choice question tied to a page.
type QuizItem struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	CorrectAnswer    string   `json:"correctAnswer"`
	RelatedPageIndex int      `json:"relatedPageIndex"`
}

// GeneratedStory is the structured output of one story generation call.
type GeneratedStory struct {
	Title string          `json:"title"`
	Pages []GeneratedPage `json:"pages"`
	Quiz  []QuizItem      `json:"quiz"`
}

// StoryPage is a page of a materialized book.
//
// At most one of ImageData and IsGeneratingImage is set at any time.
// ImageFailed records that the last illustration attempt failed; automatic
// prefetch skips such pages until the image is explicitly regenerated.
type StoryPage struct {
	ID                int          `json:"id"`
	Content           []PinyinChar `json:"content"`
	ImagePrompt       string       `json:"imagePrompt"`
	ImageData         string       `json:"imageData,omitempty"`
	IsGeneratingImage bool         `json:"isGeneratingImage"`
	ImageFailed       bool         `json:"imageFailed,omitempty"`
}

// HasImage reports whether the page carries illustration data.
func (p StoryPage) HasImage() bool {
	return p.ImageData != ""
}

// Text joins the page characters back into plain text.
func (p StoryPage) Text() string {
	var b strings.Builder
	for _, c := range p.Content {
		b.WriteString(c.Char)
	}
	return b.String()
}

// StoryData is the book a session reads. Pages are addressed by ID, which
// equals their position.
type StoryData struct {
	Title string      `json:"title"`
	Pages []StoryPage `json:"pages"`
	Quiz  []QuizItem  `json:"quiz"`
}

// NewStoryData materializes a generated story: each page gets its position
// as ID and starts without an image.
func NewStoryData(g GeneratedStory) *StoryData {
	pages := make([]StoryPage, len(g.Pages))
	for i, p := range g.Pages {
		pages[i] = StoryPage{
			ID:          i,
			Content:     p.Content,
			ImagePrompt: p.ImagePrompt,
		}
	}
	return &StoryData{
		Title: g.Title,
		Pages: pages,
		Quiz:  g.Quiz,
	}
}

// PageCount returns the number of pages.
func (s *StoryData) PageCount() int {
	if s == nil {
		return 0
	}
	return len(s.Pages)
}

// HasPage reports whether i addresses an existing page.
func (s *StoryData) HasPage(i int) bool {
	return i >= 0 && i < s.PageCount()
}

// WithPage returns a copy of s whose page i is replaced by the result of
// update. The page slice is copied; s itself is left untouched.
func (s *StoryData) WithPage(i int, update func(StoryPage) StoryPage) *StoryData {
	if !s.HasPage(i) {
		return s
	}
	next := *s
	next.Pages = make([]StoryPage, len(s.Pages))
	copy(next.Pages, s.Pages)
	next.Pages[i] = update(s.Pages[i])
	return &next
}

// Generated converts the book back into its generated form, dropping
// illustration state.
func (s *StoryData) Generated() GeneratedStory {
	pages := make([]GeneratedPage, len(s.Pages))
	for i, p := range s.Pages {
		pages[i] = GeneratedPage{ImagePrompt: p.ImagePrompt, Content: p.Content}
	}
	return GeneratedStory{Title: s.Title, Pages: pages, Quiz: s.Quiz}
}
