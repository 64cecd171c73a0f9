// Package gemini implements generation.StoryGenerator and generation.Illustrator
// on Google's Gemini API (google.golang.org/genai).
//
// This package is an infrastructure adapter: it translates between the
// domain story model and Gemini requests without exposing the external
// service to reading sessions.
//
// Key components:
//
// 1. StoryGenerator:
//   - Sends the story text with a fixed editorial system instruction and a
//     JSON response schema
//   - Recovers the JSON object from loosely formatted replies
//   - Validates and pinyin-normalizes the parsed story
//
// 2. Illustrator:
//   - Requests one scene image per prompt
//   - Returns the first inline image part as a data URI
//
// 3. Error Handling:
//   - Every call runs under a retry.Policy
//   - API and transport failures are classified into generation error kinds,
//     so permanent failures (400, 401, 403) are not retried
package gemini
