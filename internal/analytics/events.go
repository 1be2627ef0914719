// Package analytics records one event per scored match, ships the events
// through Kafka, and aggregates them into service-wide statistics.
package analytics

import "time"

// MatchEvent describes a single completed match. Document text is never
// included.
type MatchEvent struct {
	RequestID        string    `json:"request_id"`
	AnalysisID       string    `json:"analysis_id,omitempty"`
	Source           string    `json:"source"`
	Score            float64   `json:"score"`
	Verdict          string    `json:"verdict"`
	ResumeSkills     int       `json:"resume_skills"`
	JobSkills        int       `json:"job_skills"`
	MissingSkills    []string  `json:"missing_skills"`
	LexicalAvailable bool      `json:"lexical_available"`
	CacheHit         bool      `json:"cache_hit"`
	LatencyMs        float64   `json:"latency_ms"`
	Timestamp        time.Time `json:"timestamp"`
}

// Tracker accepts match events without blocking the request path.
type Tracker interface {
	Track(event MatchEvent)
}
