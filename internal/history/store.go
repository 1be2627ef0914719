package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/resilience"
)

// Repository is the persistence backend.
type Repository interface {
	Insert(ctx context.Context, rec Record) error
	Find(ctx context.Context, id string) (Record, error)
}

// Store guards a Repository with a circuit breaker and retries writes.
// Reads are not retried; a missing record is not a dependency failure.
type Store struct {
	repo    Repository
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

// NewStore wraps repo. A nil breaker gets a default one named "history".
func NewStore(repo Repository, breaker *resilience.CircuitBreaker, retry resilience.RetryConfig) *Store {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker("history", resilience.BreakerConfig{})
	}
	retry.Retryable = func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return &Store{
		repo:    repo,
		breaker: breaker,
		retry:   retry,
		logger:  slog.Default().With("component", "history"),
	}
}

// Save persists rec and returns its ID.
func (s *Store) Save(ctx context.Context, rec Record) (string, error) {
	err := resilience.Retry(ctx, "history.save", s.retry, func(ctx context.Context) error {
		return s.breaker.Execute(ctx, func(ctx context.Context) error {
			return s.repo.Insert(ctx, rec)
		})
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return "", fmt.Errorf("saving analysis: %w: %w", apperrors.ErrUnavailable, err)
		}
		return "", fmt.Errorf("saving analysis: %w", err)
	}
	s.logger.Debug("analysis saved", "analysis_id", rec.ID, "verdict", rec.Verdict)
	return rec.ID, nil
}

// Get loads an analysis by ID. Malformed IDs are reported as not found
// without touching the database.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("analysis %q: %w", id, apperrors.ErrAnalysisNotFound)
	}
	var rec Record
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.repo.Find(ctx, id)
		if errors.Is(err, apperrors.ErrAnalysisNotFound) {
			// The database answered; that counts as healthy.
			return nil
		}
		return err
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return Record{}, fmt.Errorf("loading analysis: %w: %w", apperrors.ErrUnavailable, err)
		}
		return Record{}, err
	}
	if rec.ID == "" {
		return Record{}, fmt.Errorf("analysis %s: %w", id, apperrors.ErrAnalysisNotFound)
	}
	return rec, nil
}

// Breaker returns the circuit breaker guarding the repository.
func (s *Store) Breaker() *resilience.CircuitBreaker {
	return s.breaker
}

// Check reports the history circuit as a readiness component. An open or
// half-open circuit is degraded, never down.
func (s *Store) Check(context.Context) health.ComponentHealth {
	switch st := s.breaker.State(); st {
	case resilience.StateClosed:
		return health.ComponentHealth{Status: health.StatusUp}
	default:
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit " + st.String()}
	}
}
