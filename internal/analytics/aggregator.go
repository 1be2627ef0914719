package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/kafka"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

// Stats is the aggregated view served by the analytics endpoint and saved in
// snapshots.
type Stats struct {
	TotalAnalyses     int64            `json:"total_analyses"`
	VerdictCounts     map[string]int64 `json:"verdict_counts"`
	AvgScore          float64          `json:"avg_score"`
	CacheHits         int64            `json:"cache_hits"`
	LexicalFallbacks  int64            `json:"lexical_fallbacks"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      float64          `json:"p50_latency_ms"`
	P95LatencyMs      float64          `json:"p95_latency_ms"`
	P99LatencyMs      float64          `json:"p99_latency_ms"`
	TopMissingSkills  []SkillCount     `json:"top_missing_skills"`
	AnalysesPerMinute float64          `json:"analyses_per_minute"`
	Since             time.Time        `json:"since"`
}

// SkillCount is a skill and how many job descriptions it was missing for.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int64  `json:"count"`
}

// Aggregator folds match events into Stats. It is safe for concurrent use
// and also satisfies Tracker, so it can record events directly when Kafka is
// not configured.
type Aggregator struct {
	mu         sync.RWMutex
	total      int64
	scoreSum   float64
	cacheHits  int64
	fallbacks  int64
	verdicts   map[string]int64
	missing    map[string]int64
	latencies  []float64
	nextSample int
	started    time.Time
	topN       int
	logger     *slog.Logger
}

// NewAggregator returns an empty Aggregator reporting the topN most often
// missing skills.
func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		verdicts:  make(map[string]int64),
		missing:   make(map[string]int64),
		latencies: make([]float64, 0, 1024),
		started:   time.Now().UTC(),
		topN:      topN,
		logger:    slog.Default().With("component", "analytics-aggregator"),
	}
}

// Track records ev.
func (a *Aggregator) Track(ev MatchEvent) {
	a.Record(ev)
}

// Record folds ev into the running totals.
func (a *Aggregator) Record(ev MatchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.scoreSum += ev.Score
	a.verdicts[ev.Verdict]++
	if ev.CacheHit {
		a.cacheHits++
	}
	if !ev.LexicalAvailable {
		a.fallbacks++
	}
	for _, s := range ev.MissingSkills {
		a.missing[s]++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, ev.LatencyMs)
	} else {
		a.latencies[a.nextSample] = ev.LatencyMs
		a.nextSample = (a.nextSample + 1) % maxLatencySamples
	}
}

// HandleMessage decodes a Kafka message into a MatchEvent and records it.
// Undecodable messages are logged and skipped so one bad record cannot stall
// the consumer group.
func (a *Aggregator) HandleMessage(_ context.Context, _, value []byte) error {
	ev, err := kafka.DecodeJSON[MatchEvent](value)
	if err != nil {
		a.logger.Warn("skipping undecodable match event", "error", err)
		return nil
	}
	a.Record(ev)
	return nil
}

// Stats returns a consistent snapshot.
func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := Stats{
		TotalAnalyses:    a.total,
		VerdictCounts:    make(map[string]int64, len(scorer.Verdicts())),
		CacheHits:        a.cacheHits,
		LexicalFallbacks: a.fallbacks,
		TopMissingSkills: topSkills(a.missing, a.topN),
		Since:            a.started,
	}
	// Every verdict is listed so the distribution has a stable shape.
	for _, v := range scorer.Verdicts() {
		st.VerdictCounts[string(v)] = 0
	}
	for v, n := range a.verdicts {
		st.VerdictCounts[v] = n
	}
	if a.total > 0 {
		st.AvgScore = round2(a.scoreSum / float64(a.total))
	}
	if len(a.latencies) > 0 {
		sorted := append([]float64(nil), a.latencies...)
		sort.Float64s(sorted)
		var sum float64
		for _, l := range sorted {
			sum += l
		}
		st.AvgLatencyMs = round2(sum / float64(len(sorted)))
		st.P50LatencyMs = percentile(sorted, 50)
		st.P95LatencyMs = percentile(sorted, 95)
		st.P99LatencyMs = percentile(sorted, 99)
	}
	if mins := time.Since(a.started).Minutes(); mins > 0 {
		st.AnalysesPerMinute = round2(float64(a.total) / mins)
	}
	return st
}

// percentile uses the nearest-rank method on sorted samples.
func percentile(sorted []float64, pct int) float64 {
	idx := (pct*len(sorted)+99)/100 - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// topSkills orders by count descending, then name, and keeps n.
func topSkills(counts map[string]int64, n int) []SkillCount {
	out := make([]SkillCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, SkillCount{Skill: s, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
