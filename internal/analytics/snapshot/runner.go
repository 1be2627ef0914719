package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
)

// Saver persists one stats snapshot.
type Saver interface {
	Save(ctx context.Context, stats analytics.Stats) error
}

// StatsSource produces the stats to save.
type StatsSource interface {
	Stats() analytics.Stats
}

// Run saves src's stats every interval until ctx is cancelled, then saves a
// final snapshot. Intervals where nothing new was analysed are skipped.
func Run(ctx context.Context, saver Saver, src StatsSource, interval time.Duration) {
	logger := slog.Default().With("component", "analytics-snapshots")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastTotal int64
	save := func(ctx context.Context) {
		st := src.Stats()
		if st.TotalAnalyses == lastTotal {
			return
		}
		if err := saver.Save(ctx, st); err != nil {
			logger.Error("snapshot failed", "error", err)
			return
		}
		lastTotal = st.TotalAnalyses
	}

	for {
		select {
		case <-ticker.C:
			save(ctx)
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			save(finalCtx)
			cancel()
			return
		}
	}
}
