// Package skills holds the skill vocabulary (taxonomy) and the extractor that
// finds vocabulary phrases in raw document text.
package skills

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyVocabulary is returned when a taxonomy defines no skill phrases.
var ErrEmptyVocabulary = errors.New("skill vocabulary is empty")

// Taxonomy is an immutable skill vocabulary plus the ignore list of generic
// words that are never reported as missing. It is safe for concurrent use.
type Taxonomy struct {
	skills      []string
	ignore      Set
	fingerprint string
}

// taxonomyFile is the on-disk YAML layout.
type taxonomyFile struct {
	Skills []string `yaml:"skills"`
	Ignore []string `yaml:"ignore"`
}

// NewTaxonomy lower-cases, trims and de-duplicates the given phrases.
func NewTaxonomy(skillPhrases, ignoreWords []string) (*Taxonomy, error) {
	skills := cleanPhrases(skillPhrases)
	if len(skills) == 0 {
		return nil, ErrEmptyVocabulary
	}
	ignore := cleanPhrases(ignoreWords)

	h := sha256.New()
	for _, s := range skills {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, s := range ignore {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	return &Taxonomy{
		skills:      skills,
		ignore:      NewSet(ignore...),
		fingerprint: fmt.Sprintf("%x", h.Sum(nil)[:8]),
	}, nil
}

// LoadTaxonomy reads a YAML taxonomy file with top-level "skills" and
// "ignore" lists.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy file %s: %w", path, err)
	}
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing taxonomy file %s: %w", path, err)
	}
	t, err := NewTaxonomy(f.Skills, f.Ignore)
	if err != nil {
		return nil, fmt.Errorf("taxonomy file %s: %w", path, err)
	}
	return t, nil
}

// Skills returns the sorted vocabulary. The returned slice is a copy.
func (t *Taxonomy) Skills() []string {
	out := make([]string, len(t.skills))
	copy(out, t.skills)
	return out
}

// Ignore returns the sorted ignore list.
func (t *Taxonomy) Ignore() []string {
	return t.ignore.Sorted()
}

// Ignored reports whether phrase is on the ignore list.
func (t *Taxonomy) Ignored(phrase string) bool {
	return t.ignore.Contains(phrase)
}

// Fingerprint identifies the taxonomy contents; two taxonomies with the same
// phrases share a fingerprint.
func (t *Taxonomy) Fingerprint() string {
	return t.fingerprint
}

// Len returns the number of skill phrases.
func (t *Taxonomy) Len() int {
	return len(t.skills)
}

func cleanPhrases(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
