// Package history keeps a durable record of every analysis in PostgreSQL so
// a result can be fetched again by ID. Only SHA-256 digests of the documents
// are stored, never their text.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
)

// Record is one stored analysis.
type Record struct {
	ID                string    `json:"id"`
	RequestID         string    `json:"request_id,omitempty"`
	FileName          string    `json:"file_name,omitempty"`
	ResumeSHA256      string    `json:"resume_sha256"`
	JobSHA256         string    `json:"jd_sha256"`
	MatchScore        float64   `json:"match_score"`
	Verdict           string    `json:"verdict"`
	MatchingSkills    []string  `json:"matching_skills"`
	MissingSkills     []string  `json:"missing_skills"`
	LexicalSimilarity float64   `json:"lexical_similarity"`
	LexicalAvailable  bool      `json:"lexical_available"`
	SkillOverlap      float64   `json:"skill_overlap"`
	MatchMode         string    `json:"match_mode"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewRecord builds a Record for res with a fresh UUID. Skill lists keep the
// scorer's lower-case vocabulary form.
func NewRecord(res scorer.Result, resume, jd, fileName, requestID, mode string) Record {
	return Record{
		ID:                uuid.NewString(),
		RequestID:         requestID,
		FileName:          fileName,
		ResumeSHA256:      Digest(resume),
		JobSHA256:         Digest(jd),
		MatchScore:        res.Score,
		Verdict:           string(res.Verdict),
		MatchingSkills:    nonNil(res.Present),
		MissingSkills:     nonNil(res.Missing),
		LexicalSimilarity: res.Breakdown.LexicalSimilarity,
		LexicalAvailable:  res.Breakdown.LexicalAvailable,
		SkillOverlap:      res.Breakdown.SkillOverlap,
		MatchMode:         mode,
		CreatedAt:         time.Now().UTC(),
	}
}

// Digest is the hex SHA-256 of text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
