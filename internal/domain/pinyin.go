package domain

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

var toneArgs = func() pinyin.Args {
	a := pinyin.NewArgs()
	a.Style = pinyin.Tone
	return a
}()

// NormalizeChar enforces the annotation rule for one character: punctuation
// carries empty pinyin, everything else carries non-empty pinyin. Missing
// readings for Han characters are looked up; anything else without a reading
// is annotated with itself.
func NormalizeChar(c PinyinChar) PinyinChar {
	if isPunctuationText(c.Char) {
		return PinyinChar{Char: c.Char}
	}

	py := strings.TrimSpace(c.Pinyin)
	if py == "" {
		py = Lookup(c.Char)
	}
	if py == "" {
		py = c.Char
	}
	return PinyinChar{Char: c.Char, Pinyin: py}
}

// Lookup returns the tone-marked reading of every Han character in s,
// space separated. It returns "" when s contains a character without one.
func Lookup(s string) string {
	readings := make([]string, 0, len(s))
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			return ""
		}
		py := pinyin.Pinyin(string(r), toneArgs)
		if len(py) == 0 || len(py[0]) == 0 {
			return ""
		}
		readings = append(readings, py[0][0])
	}
	return strings.Join(readings, " ")
}

func isPunctuationText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
