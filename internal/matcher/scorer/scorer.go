// Package scorer fuses lexical similarity and skill overlap into a single
// bounded match score, a verdict, and the present/missing skill breakdown for
// a resume against a job description.
//
// Scoring is a pure computation. A Scorer holds only read-only configuration
// and may be shared by any number of goroutines; every call normalises its own
// token buffers and fits its own vector space.
package scorer

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/normalizer"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/similarity"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/skills"
)

const (
	// LexicalWeight and SkillWeight sum to 1. Skill-phrase presence is
	// weighted well above generic word overlap.
	LexicalWeight = 0.3
	SkillWeight   = 0.7

	MaxScore = 100.0

	// DefaultMaxInputChars bounds the runes read from each document.
	DefaultMaxInputChars = 200000
)

// Breakdown exposes the signals behind a score.
type Breakdown struct {
	LexicalSimilarity float64 `json:"lexical_similarity"`
	SkillOverlap      float64 `json:"skill_overlap"`
	// LexicalAvailable is false when the lexical signal could not be computed
	// (empty input, or a corpus with no terms after normalisation).
	LexicalAvailable bool `json:"lexical_available"`
	ResumeSkills     int  `json:"resume_skills"`
	JobSkills        int  `json:"job_skills"`
	Truncated        bool `json:"truncated"`
}

// Result is the outcome of scoring one resume against one job description.
// Present and Missing are sorted lower-case vocabulary phrases.
type Result struct {
	Score     float64   `json:"score"`
	Verdict   Verdict   `json:"verdict"`
	Present   []string  `json:"present"`
	Missing   []string  `json:"missing"`
	Breakdown Breakdown `json:"breakdown"`
}

// Scorer computes match results against a fixed taxonomy.
type Scorer struct {
	extractor     *skills.Extractor
	maxInputChars int
	logger        *slog.Logger
}

// New creates a Scorer. maxInputChars <= 0 selects DefaultMaxInputChars.
func New(extractor *skills.Extractor, maxInputChars int) *Scorer {
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &Scorer{
		extractor:     extractor,
		maxInputChars: maxInputChars,
		logger:        slog.Default().With("component", "scorer"),
	}
}

// Extractor returns the skill extractor the scorer was built with.
func (s *Scorer) Extractor() *skills.Extractor {
	return s.extractor
}

// Score rates resume against jd. It never fails: empty input yields a zero
// score and a corpus without terms falls back to the skill signal alone.
func (s *Scorer) Score(resume, jd string) Result {
	var truncated bool
	resume, truncated = truncateRunes(resume, s.maxInputChars)
	var jdTruncated bool
	jd, jdTruncated = truncateRunes(jd, s.maxInputChars)
	truncated = truncated || jdTruncated

	resumeSkills := s.extractor.Extract(resume)
	jdSkills := s.extractor.Extract(jd)
	present := resumeSkills.Intersect(jdSkills)
	missing := jdSkills.Difference(resumeSkills, s.ignoreSet(jdSkills))

	result := Result{
		Present: present.Sorted(),
		Missing: missing.Sorted(),
		Breakdown: Breakdown{
			ResumeSkills: resumeSkills.Len(),
			JobSkills:    jdSkills.Len(),
			Truncated:    truncated,
		},
	}

	if strings.TrimSpace(resume) == "" || strings.TrimSpace(jd) == "" {
		result.Score = 0
		result.Verdict = VerdictFor(0)
		return result
	}

	lexical, ok := s.lexicalSimilarity(resume, jd)
	overlap := skillOverlap(present.Len(), jdSkills.Len())

	final := LexicalWeight*lexical + SkillWeight*overlap
	final = math.Max(0, math.Min(final, MaxScore))
	result.Score = round2(final)
	result.Verdict = VerdictFor(result.Score)
	result.Breakdown.LexicalSimilarity = round2(lexical)
	result.Breakdown.SkillOverlap = round2(overlap)
	result.Breakdown.LexicalAvailable = ok
	return result
}

// lexicalSimilarity returns the TF-IDF cosine similarity as a percentage.
// The boolean is false when the corpus has no terms.
func (s *Scorer) lexicalSimilarity(resume, jd string) (float64, bool) {
	r := normalizer.Join(resume)
	j := normalizer.Join(jd)
	cos, err := similarity.Pair(r, j)
	if err != nil {
		if errors.Is(err, similarity.ErrEmptyVocabulary) {
			s.logger.Warn("lexical similarity unavailable, degenerate corpus",
				"resume_chars", len(resume),
				"jd_chars", len(jd),
			)
		} else {
			s.logger.Error("lexical similarity failed", "error", err)
		}
		return 0, false
	}
	return cos * 100, true
}

// ignoreSet returns the ignore-list entries present in jdSkills.
func (s *Scorer) ignoreSet(jdSkills skills.Set) skills.Set {
	out := make(skills.Set)
	tax := s.extractor.Taxonomy()
	for skill := range jdSkills {
		if tax.Ignored(skill) {
			out[skill] = struct{}{}
		}
	}
	return out
}

// skillOverlap is the share of required skills found, as a percentage. A job
// description with no recognised skills has overlap 0.
func skillOverlap(matched, required int) float64 {
	if required == 0 {
		return 0
	}
	return float64(matched) / float64(required) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i], true
		}
		count++
	}
	return s, false
}
