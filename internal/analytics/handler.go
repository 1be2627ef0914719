package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler serves aggregated match statistics.
type Handler struct {
	source interface{ Stats() Stats }
	logger *slog.Logger
}

// NewHandler returns a Handler reading from agg.
func NewHandler(agg *Aggregator) *Handler {
	return &Handler{
		source: agg,
		logger: slog.Default().With("component", "analytics-handler"),
	}
}

// Stats handles GET /api/v1/analytics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.source.Stats()); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
