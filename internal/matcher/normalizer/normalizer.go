// Package normalizer turns raw document text into the lemmatised token
// sequence used for lexical similarity. It lower-cases input, replaces every
// character other than ASCII letters, digits, '+', '#' and whitespace with a
// space, splits on whitespace, removes English stop-words, and reduces each
// remaining token to its noun base form.
package normalizer

import (
	"strings"
	"unicode"
)

// Normalize returns the ordered, lemmatised tokens of text. The result is
// empty (never nil) when text is empty or consists only of stop-words.
// Invalid UTF-8 is dropped before tokenising.
func Normalize(text string) []string {
	if text == "" {
		return []string{}
	}
	text = strings.ToValidUTF8(text, "")
	text = strings.ToLower(text)
	text = strings.Map(keepRune, text)

	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		tokens = append(tokens, Lemmatize(word))
	}
	return tokens
}

// Join normalises text and joins the tokens with single spaces.
func Join(text string) string {
	return strings.Join(Normalize(text), " ")
}

// keepRune maps every rune outside [a-z0-9+#] and whitespace to a space so
// tokens such as "c++" and "c#" survive while punctuation is stripped.
func keepRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case r == '+', r == '#':
		return r
	case unicode.IsSpace(r):
		return r
	default:
		return ' '
	}
}
