package snapshot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// Lister returns saved snapshots, newest first.
type Lister interface {
	List(ctx context.Context, limit int) ([]Snapshot, error)
}

// Handler serves saved snapshots.
type Handler struct {
	lister Lister
	logger *slog.Logger
}

func NewHandler(lister Lister) *Handler {
	return &Handler{lister: lister, logger: slog.Default().With("component", "snapshot-handler")}
}

// List handles GET /api/v1/analytics/snapshots?limit=N.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}
	snaps, err := h.lister.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing snapshots failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "snapshots unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "count": len(snaps)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
