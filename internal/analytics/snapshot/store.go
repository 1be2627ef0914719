// Package snapshot persists periodic copies of the aggregated match
// statistics so trends survive restarts.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
)

// Snapshot is one saved copy of the stats.
type Snapshot struct {
	ID         int64           `json:"id"`
	Stats      analytics.Stats `json:"stats"`
	CapturedAt time.Time       `json:"captured_at"`
}

// Store reads and writes the analytics_snapshots table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore returns a Store on db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, logger: slog.Default().With("component", "analytics-snapshots")}
}

// Save inserts stats captured at the current time.
func (s *Store) Save(ctx context.Context, stats analytics.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
		data, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved", "total_analyses", stats.TotalAnalyses)
	return nil
}

// List returns up to limit snapshots, newest first. Corrupt rows are
// skipped.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, captured_at FROM analytics_snapshots ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]Snapshot, 0, limit)
	for rows.Next() {
		var (
			snap Snapshot
			data []byte
		)
		if err := rows.Scan(&snap.ID, &data, &snap.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if err := json.Unmarshal(data, &snap.Stats); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "id", snap.ID, "error", err)
			continue
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
