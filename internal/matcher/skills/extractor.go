package skills

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchMode selects how vocabulary phrases are located in text.
type MatchMode string

const (
	// ModeSubstring matches a phrase anywhere in the lower-cased text, so
	// "java" is found inside "javascript". This is the default.
	ModeSubstring MatchMode = "substring"
	// ModeWordBoundary requires the phrase to be delimited by non-alphanumeric
	// characters or the text edges.
	ModeWordBoundary MatchMode = "word_boundary"
)

// ParseMatchMode converts a configuration string into a MatchMode. The empty
// string selects ModeSubstring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeWordBoundary:
		return ModeWordBoundary, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Extractor finds taxonomy phrases in raw text. Matching is exact: text is
// only lower-cased, never tokenised or lemmatised, so phrases like "node.js"
// and "web design" match as written and a one-character difference misses.
type Extractor struct {
	taxonomy *Taxonomy
	mode     MatchMode
}

// NewExtractor creates an Extractor over the given taxonomy.
func NewExtractor(taxonomy *Taxonomy, mode MatchMode) *Extractor {
	if mode == "" {
		mode = ModeSubstring
	}
	return &Extractor{taxonomy: taxonomy, mode: mode}
}

// Extract returns the vocabulary phrases found in text.
func (e *Extractor) Extract(text string) Set {
	found := make(Set)
	if text == "" {
		return found
	}
	lower := strings.ToLower(text)
	for _, phrase := range e.taxonomy.skills {
		var ok bool
		if e.mode == ModeWordBoundary {
			ok = containsWord(lower, phrase)
		} else {
			ok = strings.Contains(lower, phrase)
		}
		if ok {
			found[phrase] = struct{}{}
		}
	}
	return found
}

// Mode returns the extractor's match mode.
func (e *Extractor) Mode() MatchMode {
	return e.mode
}

// Taxonomy returns the vocabulary the extractor matches against.
func (e *Extractor) Taxonomy() *Taxonomy {
	return e.taxonomy
}

// containsWord reports whether phrase occurs in text with no letter or digit
// immediately before or after it.
func containsWord(text, phrase string) bool {
	offset := 0
	for {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
