package snapshot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
)

type recordingSaver struct {
	mu    sync.Mutex
	saved []analytics.Stats
}

func (r *recordingSaver) Save(_ context.Context, st analytics.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, st)
	return nil
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func TestRunSkipsUnchangedAndSavesOnShutdown(t *testing.T) {
	agg := analytics.NewAggregator(5)
	agg.Record(analytics.MatchEvent{Score: 50, Verdict: "Average Match", LexicalAvailable: true})
	saver := &recordingSaver{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, saver, agg, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return saver.count() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, saver.count(), "unchanged stats are not saved again")

	agg.Record(analytics.MatchEvent{Score: 90, Verdict: "Excellent Match", LexicalAvailable: true})
	cancel()
	<-done
	assert.Equal(t, 2, saver.count())
	assert.Equal(t, int64(2), saver.saved[1].TotalAnalyses)
}

func TestRunSavesNothingBeforeFirstAnalysis(t *testing.T) {
	agg := analytics.NewAggregator(5)
	saver := &recordingSaver{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, saver, agg, 2*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, saver.count(), "an idle aggregator produces no snapshots")
	cancel()
	<-done
	assert.Zero(t, saver.count())
}
