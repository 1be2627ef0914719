package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSubstring(t *testing.T) {
	ex := NewExtractor(DefaultTaxonomy(), ModeSubstring)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"case insensitive", "PYTHON and React", []string{"python", "react"}},
		{"punctuated phrase", "Looking for Python, React, and Node.js experience, problem-solving skills required.",
			[]string{"node.js", "problem-solving", "python", "react"}},
		{"multi word phrase", "Strong background in Web Design and design thinking",
			[]string{"design thinking", "web design"}},
		{"substring inside longer word", "JavaScript only", []string{"java", "javascript"}},
		{"symbols", "C++ / C# developer", []string{"c#", "c++"}},
		{"one character off misses", "nodejs and web-design", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(tt.text).Sorted())
		})
	}
}

func TestExtractWordBoundary(t *testing.T) {
	ex := NewExtractor(DefaultTaxonomy(), ModeWordBoundary)

	assert.Equal(t, []string{"javascript"}, ex.Extract("JavaScript only").Sorted())
	assert.Equal(t, []string{"java", "javascript"}, ex.Extract("javascript, java").Sorted())
	assert.Equal(t, []string{"node.js"}, ex.Extract("built with node.js.").Sorted())
	assert.Equal(t, []string{"c++"}, ex.Extract("(c++)").Sorted())
	assert.Empty(t, ex.Extract("pythonic code").Sorted())
	assert.Equal(t, ModeWordBoundary, ex.Mode())
}

func TestExtractIsReadOnly(t *testing.T) {
	tax := DefaultTaxonomy()
	ex := NewExtractor(tax, "")
	before := tax.Skills()
	ex.Extract("python java sql")
	ex.Extract("")
	assert.Equal(t, before, tax.Skills())
	assert.Equal(t, ModeSubstring, ex.Mode())
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSubstring, m)

	m, err = ParseMatchMode("word_boundary")
	require.NoError(t, err)
	assert.Equal(t, ModeWordBoundary, m)

	_, err = ParseMatchMode("fuzzy")
	assert.Error(t, err)
}

func TestNewTaxonomy(t *testing.T) {
	tax, err := NewTaxonomy([]string{" Go ", "go", "Rust", ""}, []string{"Senior", "senior"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, tax.Skills())
	assert.Equal(t, []string{"senior"}, tax.Ignore())
	assert.True(t, tax.Ignored("senior"))
	assert.False(t, tax.Ignored("go"))
	assert.Equal(t, 2, tax.Len())

	_, err = NewTaxonomy([]string{" ", ""}, nil)
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestTaxonomyFingerprint(t *testing.T) {
	a, err := NewTaxonomy([]string{"go", "rust"}, []string{"senior"})
	require.NoError(t, err)
	b, err := NewTaxonomy([]string{"Rust", "go"}, []string{"senior"})
	require.NoError(t, err)
	c, err := NewTaxonomy([]string{"go", "rust"}, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestTaxonomySkillsReturnsCopy(t *testing.T) {
	tax := DefaultTaxonomy()
	s := tax.Skills()
	s[0] = "mutated"
	assert.NotEqual(t, "mutated", tax.Skills()[0])
}

func TestLoadTaxonomy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skills.yaml")
	content := "skills:\n  - Go\n  - Kubernetes\n  - gRPC\nignore:\n  - senior\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tax, err := LoadTaxonomy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "grpc", "kubernetes"}, tax.Skills())
	assert.Equal(t, []string{"senior"}, tax.Ignore())
}

func TestLoadTaxonomyErrors(t *testing.T) {
	_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("skills: [unterminated"), 0o644))
	_, err = LoadTaxonomy(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("ignore: [senior]\n"), 0o644))
	_, err = LoadTaxonomy(empty)
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestSetOperations(t *testing.T) {
	a := NewSet("python", "react", "node.js")
	b := NewSet("python", "sql")
	assert.Equal(t, []string{"python"}, a.Intersect(b).Sorted())
	assert.Equal(t, []string{"node.js", "react"}, a.Difference(b).Sorted())
	assert.Equal(t, []string{"react"}, a.Difference(b, NewSet("node.js")).Sorted())
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.Contains("react"))
	assert.Empty(t, NewSet().Sorted())
}

func TestShippedTaxonomyMatchesDefault(t *testing.T) {
	tax, err := LoadTaxonomy(filepath.Join("..", "..", "..", "configs", "skills.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTaxonomy().Fingerprint(), tax.Fingerprint())
}
