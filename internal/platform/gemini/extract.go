package gemini

import (
	"regexp"
	"strings"

	"google.golang.org/genai"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// extractJSON recovers the JSON object from a model reply: the text between
// the first '{' and the last '}', or failing that the reply with Markdown
// code fences stripped.
func extractJSON(text string) string {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		return text[first : last+1]
	}

	text = leadingFence.ReplaceAllString(text, "")
	return trailingFence.ReplaceAllString(text, "")
}

// firstCandidate returns the response's first candidate, if any.
func firstCandidate(resp *genai.GenerateContentResponse) *genai.Candidate {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0]
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	c := firstCandidate(resp)
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// abnormalFinish returns the finish reason when generation stopped for
// anything other than natural completion.
func abnormalFinish(resp *genai.GenerateContentResponse) (string, bool) {
	c := firstCandidate(resp)
	if c == nil || c.FinishReason == "" || c.FinishReason == genai.FinishReasonStop {
		return "", false
	}
	return string(c.FinishReason), true
}
