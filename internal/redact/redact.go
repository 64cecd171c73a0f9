// Package redact scrubs sensitive information from strings before they are
// logged or returned in error responses: Gemini API keys, database
// credentials, bearer tokens and the base64 bodies of generated images.
package redact

import (
	"fmt"
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
)

// dataURIPreview is how many payload characters of a data URI survive.
const dataURIPreview = 16

type rule struct {
	re          *regexp.Regexp
	placeholder string
}

var (
	// Google API keys are "AIza" followed by 35 URL-safe characters.
	googleKeyRegex = regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`)
	// key=..., api_key: ..., x-goog-api-key=...
	keyParamRegex = regexp.MustCompile(`(?i)\b((?:x-goog-)?api[_-]?key|key)([=:]\s*)[A-Za-z0-9_\-.~+/]{8,}`)
	dbConnRegex   = regexp.MustCompile(`(?i)\b(postgres|postgresql)://[^@\s]+@`)
	passwordRegex = regexp.MustCompile(`(?i)\b(password|passwd|pwd)([=:]\s*)[^'"&\s]{3,}`)
	bearerRegex   = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/=]{8,}`)

	dataURIRegex = regexp.MustCompile(`data:image/[a-zA-Z0-9.+\-]+;base64,([A-Za-z0-9+/=]+)`)

	rules = []rule{
		{googleKeyRegex, RedactedKeyPlaceholder},
		{keyParamRegex, "${1}${2}" + RedactedKeyPlaceholder},
		{dbConnRegex, "${1}://" + RedactedCredentialPlaceholder + "@"},
		{passwordRegex, "${1}${2}" + RedactedCredentialPlaceholder},
		{bearerRegex, "Bearer " + RedactedTokenPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := DataURI(input)
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// DataURI shortens every base64 image payload in s to a short prefix
// followed by its original length, keeping log lines readable.
func DataURI(s string) string {
	return dataURIRegex.ReplaceAllStringFunc(s, func(m string) string {
		sub := dataURIRegex.FindStringSubmatchIndex(m)
		payload := m[sub[2]:sub[3]]
		if len(payload) <= dataURIPreview {
			return m
		}
		return fmt.Sprintf("%s%s...(%d bytes)", m[:sub[2]], payload[:dataURIPreview], len(payload))
	})
}
