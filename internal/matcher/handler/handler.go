// Package handler serves the match API: resume upload analysis, JSON
// scoring, the active taxonomy, stored analyses, and result-cache control.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/history"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/cache"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/tracing"
)

// User-facing messages for rejected uploads.
const (
	MsgMissingData    = "Missing Data: Please upload a resume and enter a JD."
	MsgUnreadableText = "Could not read text from the uploaded resume."
)

// ResultCache is satisfied by *cache.ResultCache.
type ResultCache interface {
	GetOrCompute(ctx context.Context, resume, jd string, compute func() scorer.Result) (scorer.Result, bool)
	Invalidate(ctx context.Context) (int64, error)
	Stats() cache.Stats
}

// HistoryStore is satisfied by *history.Store.
type HistoryStore interface {
	Save(ctx context.Context, rec history.Record) (string, error)
	Get(ctx context.Context, id string) (history.Record, error)
}

// Options carries the optional collaborators. Leave a field nil to disable
// that feature; do not store a typed nil pointer in an interface field.
type Options struct {
	Cache          ResultCache
	History        HistoryStore
	Tracker        analytics.Tracker
	Metrics        *metrics.Metrics
	Tracer         *tracing.Tracer
	MaxUploadBytes int64
	ExtractTimeout time.Duration
}

// AnalysisResponse is returned by the analyze and score endpoints.
type AnalysisResponse struct {
	scorer.Report
	FileName         string           `json:"file_name,omitempty"`
	AnalysisID       string           `json:"analysis_id,omitempty"`
	LexicalAvailable bool             `json:"lexical_available"`
	Breakdown        scorer.Breakdown `json:"breakdown"`
}

// Handler implements the match endpoints.
type Handler struct {
	scorer    *scorer.Scorer
	opts      Options
	validator *validator.Validator
	logger    *slog.Logger
}

// New returns a Handler scoring with sc.
func New(sc *scorer.Scorer, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		scorer:    sc,
		opts:      opts,
		validator: validator.New(),
		logger:    slog.Default().With("component", "match-handler"),
	}
}

// Score handles POST /api/v1/score with a JSON body.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	var req validator.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.writeError(w, apperrors.HTTPStatusCode(apperrors.ErrInvalidInput), "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  MsgMissingData,
				"fields": verr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := h.opts.Tracer.Start(r.Context(), "score_request", middleware.GetRequestID(r.Context()))
	defer span.End()
	resp := h.match(ctx, matchInput{resume: req.ResumeText, jd: req.JobDescription, source: "json"})
	h.writeJSON(w, http.StatusOK, resp)
}

// Taxonomy handles GET /api/v1/taxonomy.
func (h *Handler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	ext := h.scorer.Extractor()
	tax := ext.Taxonomy()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"skills":      tax.Skills(),
		"ignore":      tax.Ignore(),
		"count":       tax.Len(),
		"match_mode":  ext.Mode(),
		"fingerprint": tax.Fingerprint(),
	})
}

// Analysis handles GET /api/v1/analyses/{id}.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	if h.opts.History == nil {
		h.writeError(w, http.StatusServiceUnavailable, "analysis history is disabled")
		return
	}
	rec, err := h.opts.History.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(r.Context()).Error("loading analysis failed", "error", err)
			h.writeError(w, status, "analysis history unavailable")
			return
		}
		h.writeError(w, status, "analysis not found")
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.opts.Cache.Stats())
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	n, err := h.opts.Cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": n})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
