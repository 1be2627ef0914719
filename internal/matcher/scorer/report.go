package scorer

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Report is the display form of a Result returned to API and CLI callers.
type Report struct {
	MatchScore     float64  `json:"match_score"`
	Verdict        string   `json:"verdict"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
}

// Present converts r into a Report with title-cased skill names. Ordering
// follows the sorted lower-case phrases so output is deterministic.
func Present(r Result) Report {
	// A Caser keeps state between calls, so each Report gets its own.
	caser := cases.Title(language.English)
	return Report{
		MatchScore:     r.Score,
		Verdict:        string(r.Verdict),
		MatchingSkills: titleAll(caser, r.Present),
		MissingSkills:  titleAll(caser, r.Missing),
	}
}

func titleAll(caser cases.Caser, in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = caser.String(s)
	}
	return out
}
