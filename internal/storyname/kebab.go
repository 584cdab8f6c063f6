package storyname

import (
	"strings"
	"unicode"
)

// KebabCase lower-cases s and joins its words with the story delimiter.
//
// Words are split on any rune that is neither a letter nor a digit and on
// case changes (fooBar, HTMLButton). Digits stay attached to the preceding
// word. Separator runs collapse and are trimmed, so the result never holds a
// doubled delimiter.
func KebabCase(s string) string {
	runes := []rune(s)

	var b strings.Builder

	pendingSep := false

	for i, r := range runes {
		if !isWordRune(r) {
			pendingSep = b.Len() > 0
			continue
		}

		if b.Len() > 0 && !pendingSep && unicode.IsUpper(r) && isWordBoundary(runes, i) {
			pendingSep = true
		}

		if pendingSep {
			b.WriteString(StoryDelimiter)

			pendingSep = false
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isWordBoundary reports whether the upper-case rune at i starts a new word.
func isWordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	// HTMLButton: the B starts a word because a lower-case rune follows.
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
