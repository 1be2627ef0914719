package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/handler"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/skills"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/middleware"
)

func newRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	sc := scorer.New(skills.NewExtractor(skills.DefaultTaxonomy(), skills.ModeSubstring), 0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(Deps{
		Match:     handler.New(sc, handler.Options{}),
		Analytics: analytics.NewHandler(analytics.NewAggregator(0)),
		Health:    health.NewChecker(0),
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Limiter:   ratelimit.New(ctx, cfg.RateLimit.Window),
	}, cfg)
}

func TestRoutes(t *testing.T) {
	h := newRouter(t, config.Default())
	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/v1/taxonomy", "", http.StatusOK},
		{http.MethodGet, "/api/v1/analytics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cache/stats", "", http.StatusOK},
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodPost, "/api/v1/score", `{"resume_text":"python","job_description":"python"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/score", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/analytics/snapshots", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	}
}

func TestRateLimitApplied(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.Requests = 2
	h := newRouter(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/taxonomy", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
