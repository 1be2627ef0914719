// Package router wires the match service routes and applies the middleware
// chain.
package router

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics/snapshot"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/handler"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/middleware"
)

// Deps are the handlers and shared middleware inputs. Snapshots, Metrics,
// and Limiter may be nil.
type Deps struct {
	Match     *handler.Handler
	Analytics *analytics.Handler
	Snapshots *snapshot.Handler
	Health    *health.Checker
	Metrics   *metrics.Metrics
	Limiter   middleware.Allower
}

// New builds the service handler.
//
// Route table:
//
//	POST /api/v1/analyze                multipart resume + job_description
//	POST /api/v1/score                  JSON resume_text + job_description
//	GET  /api/v1/taxonomy               active skill vocabulary
//	GET  /api/v1/analyses/{id}          stored analysis
//	GET  /api/v1/analytics              aggregated match stats
//	GET  /api/v1/analytics/snapshots    saved stats snapshots
//	GET  /api/v1/cache/stats            result cache counters
//	POST /api/v1/cache/invalidate       drop cached results
//	GET  /health/live, /health/ready    probes
//
// Middleware, outermost first:
//
//	RequestID → Metrics → CORS → RateLimit → Timeout → mux
func New(d Deps, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/analyze", d.Match.Analyze)
	mux.HandleFunc("POST /api/v1/score", d.Match.Score)
	mux.HandleFunc("GET /api/v1/taxonomy", d.Match.Taxonomy)
	mux.HandleFunc("GET /api/v1/analyses/{id}", d.Match.Analysis)
	mux.HandleFunc("GET /api/v1/cache/stats", d.Match.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", d.Match.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", d.Analytics.Stats)
	if d.Snapshots != nil {
		mux.HandleFunc("GET /api/v1/analytics/snapshots", d.Snapshots.List)
	}
	mux.HandleFunc("GET /health/live", d.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", d.Health.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(requestTimeout(cfg.Server))(chain)
	if cfg.RateLimit.Enabled && d.Limiter != nil {
		chain = middleware.RateLimit(d.Limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window)(chain)
	}
	chain = middleware.CORS(cfg.CORS)(chain)
	if d.Metrics != nil {
		chain = middleware.Metrics(d.Metrics)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}

// requestTimeout leaves a second of the write deadline for the timeout
// response itself.
func requestTimeout(s config.ServerConfig) time.Duration {
	if s.WriteTimeout > 2*time.Second {
		return s.WriteTimeout - time.Second
	}
	return s.WriteTimeout
}
