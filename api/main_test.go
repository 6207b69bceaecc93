package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fake-news-detector/backend/internal/config"
	"github.com/DeafMist/fake-news-detector/backend/internal/explain"
	"github.com/DeafMist/fake-news-detector/backend/internal/model"
	"github.com/DeafMist/fake-news-detector/backend/internal/models"
	"github.com/DeafMist/fake-news-detector/backend/internal/verify"
)

type stubVerifier struct {
	calls int
	err   error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (models.PredictionResult, error) {
	s.calls++
	return models.PredictionResult{}, s.err
}

func testConfig() *config.API {
	return &config.API{
		Common: config.Common{
			MinTextLength:   50,
			MaxTextLength:   20000,
			ExplanationTopK: 4,
		},
		BindAddr:       ":0",
		MaxBodyBytes:   1 << 20,
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"http://localhost:5173"},
	}
}

func newTestServer(t *testing.T, v verifier) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := model.LoadEmbedded()
	require.NoError(t, err)

	cfg := testConfig()
	if v == nil {
		p, err := verify.NewPipeline(m, explain.Options{TopK: cfg.ExplanationTopK})
		require.NoError(t, err)
		v = verify.NewService(p, nil, log, verify.Options{MinLength: cfg.MinTextLength, MaxLength: cfg.MaxTextLength})
	}
	srv := &server{log: log, cfg: cfg, verifier: v, model: m}
	return srv.routes()
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPredictSuccessShape(t *testing.T) {
	h := newTestServer(t, nil)
	text := "The Federal Reserve announced on Wednesday that it would raise its benchmark interest rate by " +
		"0.25 percentage points, citing persistent inflation concerns, according to a statement released after the meeting."

	body, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)
	rec := post(t, h, string(body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 3)
	prediction, ok := raw["prediction"].(string)
	require.True(t, ok)
	require.Contains(t, []string{"Real", "Fake"}, prediction)
	confidence, ok := raw["confidence"].(float64)
	require.True(t, ok)
	require.GreaterOrEqual(t, confidence, 0.5)
	require.LessOrEqual(t, confidence, 1.0)
	explanation, ok := raw["explanation"].(string)
	require.True(t, ok)
	require.NotEmpty(t, explanation)
}

func TestPredictHeadlineIsFake(t *testing.T) {
	h := newTestServer(t, nil)
	rec := post(t, h, `{"text":"BREAKING: Scientists discover miracle cure! Doctors SHOCKED by this one weird trick!"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var res models.PredictionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "Fake", res.Prediction)
	require.Greater(t, res.Confidence, 0.5)
}

func TestPredictClientErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{name: "empty text", body: `{"text":""}`, wantStatus: http.StatusBadRequest, wantDetail: "Text cannot be empty."},
		{name: "missing text", body: `{}`, wantStatus: http.StatusBadRequest, wantDetail: `Field "text" is required.`},
		{name: "too short", body: `{"text":"Short claim."}`, wantStatus: http.StatusBadRequest, wantDetail: "at least 50 characters"},
		{name: "malformed", body: `{"text":`, wantStatus: http.StatusBadRequest, wantDetail: "Malformed JSON body."},
		{name: "no body", body: ``, wantStatus: http.StatusBadRequest, wantDetail: `"text" field`},
		{name: "wrong type", body: `{"text":42}`, wantStatus: http.StatusBadRequest, wantDetail: "Malformed JSON body."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, nil)
			rec := post(t, h, tt.body)

			require.Equal(t, tt.wantStatus, rec.Code)
			var res models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			require.Contains(t, res.Detail, tt.wantDetail)
		})
	}
}

func TestPredictShortTextNeverReachesVerifierPipeline(t *testing.T) {
	stub := &stubVerifier{}
	h := newTestServer(t, stub)

	rec := post(t, h, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, stub.calls)
}

func TestPredictServerErrorHidesDetails(t *testing.T) {
	stub := &stubVerifier{err: errors.Join(verify.ErrPipelineFailure, errors.New("nil map write in explain.go:88"))}
	h := newTestServer(t, stub)

	rec := post(t, h, `{"text":"irrelevant for the stub"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "explain.go")

	var res models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "Internal server error.", res.Detail)
}

func TestPredictBodyTooLarge(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := model.LoadEmbedded()
	require.NoError(t, err)
	cfg := testConfig()
	cfg.MaxBodyBytes = 64
	srv := &server{log: log, cfg: cfg, verifier: &stubVerifier{}, model: m}

	rec := post(t, srv.routes(), `{"text":"`+strings.Repeat("a", 200)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPredictMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/predict", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRootAndHealth(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"API is running"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health["status"])
	require.Equal(t, "newscheck-tfidf-logreg", health["model_id"])
	require.Positive(t, health["features"])
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
