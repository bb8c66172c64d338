package harness

import (
	"strings"
	"unicode"
)

// splitWords breaks an option key into lower-case words on separators and
// case changes: "fooBar", "foo-bar" and "foo_bar" all give [foo bar].
func splitWords(key string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(key)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// camelCase converts "foo-bar" to "fooBar".
func camelCase(key string) string {
	words := splitWords(key)
	if len(words) == 0 {
		return key
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// kebabCase converts "fooBar" to "foo-bar".
func kebabCase(key string) string {
	words := splitWords(key)
	if len(words) == 0 {
		return key
	}
	return strings.Join(words, "-")
}
