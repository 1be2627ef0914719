package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/extraction"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/history"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
	apperrors "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/tracing"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temporary files.
const multipartMemory = 4 << 20

type matchInput struct {
	resume   string
	jd       string
	fileName string
	source   string
}

// Analyze handles POST /api/v1/analyze: a multipart form with the resume
// file in "resume" and the job description text in "job_description".
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.opts.Tracer.Start(r.Context(), "analyze", middleware.GetRequestID(r.Context()))
	defer span.End()
	log := logger.FromContext(ctx)

	if r.ContentLength > h.opts.MaxUploadBytes {
		h.writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		h.writeError(w, http.StatusBadRequest, MsgMissingData)
		return
	}
	defer r.MultipartForm.RemoveAll()

	// A present but empty job description is scored as the empty case.
	jdValues := r.MultipartForm.Value["job_description"]
	file, header, err := r.FormFile("resume")
	if err != nil || header.Filename == "" || len(jdValues) == 0 {
		if file != nil {
			file.Close()
		}
		h.writeError(w, http.StatusBadRequest, MsgMissingData)
		return
	}
	defer file.Close()

	data, err := extraction.ReadLimited(file, h.opts.MaxUploadBytes)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), "upload exceeds size limit")
		return
	}

	doc, err := h.extract(ctx, header.Filename, data)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		log.Warn("resume extraction failed", "file_name", header.Filename, "error", err, "status_code", status)
		if errors.Is(err, apperrors.ErrUnsupportedFormat) {
			h.writeError(w, status, MsgUnreadableText)
			return
		}
		h.writeError(w, status, "resume extraction failed")
		return
	}
	if strings.TrimSpace(doc.Text) == "" {
		log.Warn("resume has no readable text", "file_name", header.Filename, "format", doc.Format)
		h.writeError(w, apperrors.HTTPStatusCode(apperrors.ErrEmptyDocument), MsgUnreadableText)
		return
	}

	resp := h.match(ctx, matchInput{
		resume:   doc.Text,
		jd:       jdValues[0],
		fileName: header.Filename,
		source:   string(doc.Format),
	})
	h.writeJSON(w, http.StatusOK, resp)
}

// extract decodes the upload under the configured deadline and records the
// outcome per format.
func (h *Handler) extract(ctx context.Context, fileName string, data []byte) (extraction.Document, error) {
	ctx, span := tracing.StartChild(ctx, "extract")
	defer span.End()

	doc, err := resilience.WithTimeout(ctx, h.opts.ExtractTimeout, "extract", func(context.Context) (extraction.Document, error) {
		return extraction.Extract(fileName, data)
	})
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = errors.Join(apperrors.ErrTimeout, err)
	}

	format := string(extraction.DetectFormat(fileName, data))
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case strings.TrimSpace(doc.Text) == "":
		status = "empty"
	}
	span.SetAttr("format", format)
	span.SetAttr("status", status)
	span.SetAttr("bytes", len(data))
	if m := h.opts.Metrics; m != nil {
		m.DocumentExtractTotal.WithLabelValues(format, status).Inc()
	}
	return doc, err
}

// match scores the pair and fans the result out to metrics, history, and
// analytics. History failures are logged and leave AnalysisID empty; they
// never fail the request.
func (h *Handler) match(ctx context.Context, in matchInput) AnalysisResponse {
	start := time.Now()
	log := logger.FromContext(ctx)

	scoreCtx, span := tracing.StartChild(ctx, "score")
	compute := func() scorer.Result { return h.scorer.Score(in.resume, in.jd) }
	var (
		res scorer.Result
		hit bool
	)
	if h.opts.Cache != nil {
		res, hit = h.opts.Cache.GetOrCompute(scoreCtx, in.resume, in.jd, compute)
	} else {
		res = compute()
	}
	span.SetAttr("cache_hit", hit)
	span.SetAttr("score", res.Score)
	span.End()
	latency := time.Since(start)

	h.observe(res, hit, latency)

	resp := AnalysisResponse{
		Report:           scorer.Present(res),
		FileName:         in.fileName,
		LexicalAvailable: res.Breakdown.LexicalAvailable,
		Breakdown:        res.Breakdown,
	}

	requestID := middleware.GetRequestID(ctx)
	if h.opts.History != nil {
		persistCtx, span := tracing.StartChild(ctx, "persist")
		rec := history.NewRecord(res, in.resume, in.jd, in.fileName, requestID, string(h.scorer.Extractor().Mode()))
		id, err := h.opts.History.Save(persistCtx, rec)
		if err != nil {
			log.Warn("saving analysis failed", "error", err)
			span.SetAttr("error", err.Error())
		}
		resp.AnalysisID = id
		span.End()
	}

	if h.opts.Tracker != nil {
		h.opts.Tracker.Track(analytics.MatchEvent{
			RequestID:        requestID,
			AnalysisID:       resp.AnalysisID,
			Source:           in.source,
			Score:            res.Score,
			Verdict:          string(res.Verdict),
			ResumeSkills:     res.Breakdown.ResumeSkills,
			JobSkills:        res.Breakdown.JobSkills,
			MissingSkills:    res.Missing,
			LexicalAvailable: res.Breakdown.LexicalAvailable,
			CacheHit:         hit,
			LatencyMs:        float64(latency.Microseconds()) / 1000,
			Timestamp:        time.Now().UTC(),
		})
	}

	log.Info("match completed",
		"score", res.Score,
		"verdict", res.Verdict,
		"present", len(res.Present),
		"missing", len(res.Missing),
		"lexical_available", res.Breakdown.LexicalAvailable,
		"truncated", res.Breakdown.Truncated,
		"cache_hit", hit,
		"latency_ms", latency.Milliseconds(),
	)
	return resp
}

func (h *Handler) observe(res scorer.Result, hit bool, latency time.Duration) {
	m := h.opts.Metrics
	if m == nil {
		return
	}
	m.MatchRequestsTotal.WithLabelValues(string(res.Verdict)).Inc()
	m.MatchScore.Observe(res.Score)
	cacheStatus := "disabled"
	if h.opts.Cache != nil {
		if hit {
			cacheStatus = "hit"
			m.CacheHitsTotal.Inc()
		} else {
			cacheStatus = "miss"
			m.CacheMissesTotal.Inc()
		}
	}
	m.MatchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	if !res.Breakdown.LexicalAvailable {
		m.LexicalFallbackTotal.Inc()
	}
}
