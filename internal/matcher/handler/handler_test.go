package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/history"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/cache"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/skills"
	apperrors "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/metrics"
)

const (
	testResume = "Experienced Python developer with React and SQL skills"
	testJD     = "Looking for Python, React, and Node.js experience, problem-solving skills required."
)

func newScorer() *scorer.Scorer {
	return scorer.New(skills.NewExtractor(skills.DefaultTaxonomy(), skills.ModeSubstring), 0)
}

func multipartBody(t *testing.T, fileName string, content []byte, jd *string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("resume", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if jd != nil {
		require.NoError(t, mw.WriteField("job_description", *jd))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postAnalyze(t *testing.T, h *Handler, fileName string, content []byte, jd *string) *httptest.ResponseRecorder {
	t.Helper()
	body, ctype := multipartBody(t, fileName, content, jd)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	msg, _ := body["error"].(string)
	return msg
}

func ptr(s string) *string { return &s }

func TestAnalyzeSuccess(t *testing.T) {
	h := New(newScorer(), Options{})
	rec := postAnalyze(t, h, "resume.txt", []byte(testResume), ptr(testJD))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "resume.txt", resp.FileName)
	assert.Equal(t, []string{"Python", "React"}, resp.MatchingSkills)
	require.Len(t, resp.MissingSkills, 2)
	assert.Equal(t, "Problem-Solving", resp.MissingSkills[1])
	assert.Equal(t, "Poor Match", resp.Verdict)
	assert.InDelta(t, 38.53, resp.MatchScore, 0.5)
	assert.True(t, resp.LexicalAvailable)
	assert.Empty(t, resp.AnalysisID)
}

func TestAnalyzeMissingData(t *testing.T) {
	h := New(newScorer(), Options{})
	tests := []struct {
		name     string
		fileName string
		jd       *string
	}{
		{"no file", "", ptr(testJD)},
		{"no jd field", "resume.txt", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAnalyze(t, h, tt.fileName, []byte(testResume), tt.jd)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, MsgMissingData, decodeError(t, rec))
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEmptyJobDescriptionScoresZero(t *testing.T) {
	h := New(newScorer(), Options{})
	rec := postAnalyze(t, h, "resume.txt", []byte(testResume), ptr(""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0.0, resp.MatchScore)
	assert.Equal(t, "Poor Match", resp.Verdict)
	assert.Empty(t, resp.MatchingSkills)
	assert.Empty(t, resp.MissingSkills)
	assert.False(t, resp.LexicalAvailable)
}

func TestAnalyzeUnreadableResume(t *testing.T) {
	h := New(newScorer(), Options{})

	rec := postAnalyze(t, h, "resume.txt", []byte("   \n\t"), ptr(testJD))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgUnreadableText, decodeError(t, rec))

	rec = postAnalyze(t, h, "resume.pdf", []byte("definitely not a pdf"), ptr(testJD))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, MsgUnreadableText, decodeError(t, rec))
}

func TestAnalyzeTooLarge(t *testing.T) {
	h := New(newScorer(), Options{MaxUploadBytes: 64})
	rec := postAnalyze(t, h, "resume.txt", bytes.Repeat([]byte("python "), 100), ptr(testJD))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestScoreJSON(t *testing.T) {
	h := New(newScorer(), Options{})
	body, _ := json.Marshal(map[string]string{"resume_text": testResume, "job_description": testJD})
	rec := httptest.NewRecorder()
	h.Score(rec, httptest.NewRequest(http.MethodPost, "/api/v1/score", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 4, resp.Breakdown.JobSkills)
	assert.Equal(t, 50.0, resp.Breakdown.SkillOverlap)
	assert.Empty(t, resp.FileName)
}

func TestScoreValidation(t *testing.T) {
	h := New(newScorer(), Options{})

	rec := httptest.NewRecorder()
	h.Score(rec, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(`{"resume_text":"python"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, MsgMissingData, body.Error)
	assert.Contains(t, body.Fields, "job_description")

	rec = httptest.NewRecorder()
	h.Score(rec, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaxonomy(t *testing.T) {
	h := New(newScorer(), Options{})
	rec := httptest.NewRecorder()
	h.Taxonomy(rec, httptest.NewRequest(http.MethodGet, "/api/v1/taxonomy", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Skills    []string `json:"skills"`
		Ignore    []string `json:"ignore"`
		Count     int      `json:"count"`
		MatchMode string   `json:"match_mode"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body.Skills, "python")
	assert.Contains(t, body.Ignore, "senior")
	assert.Equal(t, len(body.Skills), body.Count)
	assert.Equal(t, "substring", body.MatchMode)
}

type memHistory struct {
	mu      sync.Mutex
	records map[string]history.Record
	saveErr error
}

func (m *memHistory) Save(_ context.Context, rec history.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.records[rec.ID] = rec
	return rec.ID, nil
}

func (m *memHistory) Get(_ context.Context, id string) (history.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return history.Record{}, apperrors.ErrAnalysisNotFound
	}
	return rec, nil
}

func TestAnalyzePersistsAndServesHistory(t *testing.T) {
	store := &memHistory{records: make(map[string]history.Record)}
	h := New(newScorer(), Options{History: store})

	rec := postAnalyze(t, h, "cv.txt", []byte(testResume), ptr(testJD))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnalysisResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	_, err := uuid.Parse(resp.AnalysisID)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analyses/{id}", h.Analysis)

	get := httptest.NewRecorder()
	mux.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+resp.AnalysisID, nil))
	require.Equal(t, http.StatusOK, get.Code)
	var stored history.Record
	require.NoError(t, json.NewDecoder(get.Body).Decode(&stored))
	assert.Equal(t, "cv.txt", stored.FileName)
	assert.Equal(t, history.Digest(testResume), stored.ResumeSHA256)
	assert.Equal(t, []string{"python", "react"}, stored.MatchingSkills)

	missing := httptest.NewRecorder()
	mux.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestAnalyzeHistoryFailureDoesNotFailRequest(t *testing.T) {
	store := &memHistory{records: make(map[string]history.Record), saveErr: errors.New("db down")}
	h := New(newScorer(), Options{History: store})
	rec := postAnalyze(t, h, "cv.txt", []byte(testResume), ptr(testJD))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnalysisResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.AnalysisID)
}

func TestAnalysisWithoutHistory(t *testing.T) {
	rec := httptest.NewRecorder()
	New(newScorer(), Options{}).Analysis(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) DeletePrefix(_ context.Context, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.data))
	m.data = make(map[string][]byte)
	return n, nil
}

func TestCacheMetricsAndAnalytics(t *testing.T) {
	sc := newScorer()
	m := metrics.New(prometheus.NewRegistry())
	agg := analytics.NewAggregator(5)
	h := New(sc, Options{
		Cache:   cache.New(&memStore{data: make(map[string][]byte)}, time.Minute, sc.Extractor()),
		Metrics: m,
		Tracker: agg,
	})

	for i := 0; i < 2; i++ {
		rec := postAnalyze(t, h, "cv.txt", []byte(testResume), ptr(testJD))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MatchRequestsTotal.WithLabelValues("Poor Match")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentExtractTotal.WithLabelValues("text", "ok")))

	st := agg.Stats()
	assert.Equal(t, int64(2), st.TotalAnalyses)
	assert.Equal(t, int64(1), st.CacheHits)
	assert.Equal(t, []analytics.SkillCount{{Skill: "node.js", Count: 2}, {Skill: "problem-solving", Count: 2}}, st.TopMissingSkills)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	var cs cache.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cs))
	assert.Equal(t, int64(1), cs.Hits)

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheEndpointsDisabled(t *testing.T) {
	h := New(newScorer(), Options{})
	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
