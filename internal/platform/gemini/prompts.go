package gemini

import (
	"fmt"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"google.golang.org/genai"
)

// IllustrationStyle is appended to every page prompt by the story model.
const IllustrationStyle = "colorful, vivid, studio ghibli style, cute, vector art"

var storySystemInstruction = fmt.Sprintf(`You are an expert children's book editor and educator.
Your task is to take a raw Chinese story and format it into a paginated picture book for a 7-year-old child, AND create a simple "Look at the picture, guess the word" game.

Rules for Story:
1. Divide the story into %d to %d logical scenes (pages).
2. Keep the text for each page concise (2-3 sentences) and easy for a 7-year-old to read.
3. For each page, provide a detailed English prompt for a cartoon illustration. Style: "%s".
4. For the text content, break it down into individual characters with their correct Pinyin. Punctuation characters get an empty pinyin string.
5. Generate a short, catchy title in Chinese.

Rules for Quiz (Game):
1. Create exactly %d quiz questions based on the story.
2. For each question, choose a 'relatedPageIndex' (0-based index) referring to one of the story pages where a specific object or character appears clearly.
3. The question should be simple, e.g., "图中画的是什么？" (What is in the picture?) or "谁在跑步？" (Who is running?).
4. Provide %d options (words or short phrases). One must be correct.

Output strictly valid JSON.`,
	domain.MinPages, domain.MaxPages, IllustrationStyle, domain.QuizLength, domain.OptionsPerQuiz)

func storyPrompt(rawText string) string {
	return fmt.Sprintf("Here is the story text: %q. Please process this according to the system instructions.", rawText)
}

func storyConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(storySystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    storySchema(),
	}
}

func storySchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}

	pinyinChar := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"char":   str,
			"pinyin": str,
		},
		Required: []string{"char", "pinyin"},
	}

	page := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"imagePrompt": str,
			"content":     {Type: genai.TypeArray, Items: pinyinChar},
		},
		Required:         []string{"imagePrompt", "content"},
		PropertyOrdering: []string{"imagePrompt", "content"},
	}

	quizItem := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question":      str,
			"options":       {Type: genai.TypeArray, Items: str},
			"correctAnswer": str,
			"relatedPageIndex": {
				Type:        genai.TypeInteger,
				Description: "Index of the page image this question is about",
			},
		},
		Required:         []string{"question", "options", "correctAnswer", "relatedPageIndex"},
		PropertyOrdering: []string{"question", "options", "correctAnswer", "relatedPageIndex"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": str,
			"pages": {Type: genai.TypeArray, Items: page},
			"quiz":  {Type: genai.TypeArray, Items: quizItem},
		},
		Required:         []string{"title", "pages", "quiz"},
		PropertyOrdering: []string{"title", "pages", "quiz"},
	}
}

func illustrationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
	}
}
