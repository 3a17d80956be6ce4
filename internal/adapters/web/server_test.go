package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/mikey/inbox-therapist/internal/adapters/mailer"
	"github.com/mikey/inbox-therapist/internal/adapters/web"
	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/dashboard"
)

type analyzerMock struct {
	AnalyzeFunc func(ctx context.Context, req core.AnalysisRequest) (*analysis.AnalysisResult, error)
}

func (m *analyzerMock) Analyze(ctx context.Context, req core.AnalysisRequest) (*analysis.AnalysisResult, error) {
	return m.AnalyzeFunc(ctx, req)
}

type oauthMock struct {
	AuthURLFunc  func() (string, error)
	ExchangeFunc func(ctx context.Context, code, state string) (*oauth2.Token, error)
}

func (m *oauthMock) AuthURL() (string, error) { return m.AuthURLFunc() }

func (m *oauthMock) Exchange(ctx context.Context, code, state string) (*oauth2.Token, error) {
	return m.ExchangeFunc(ctx, code, state)
}

type reportMock struct {
	enabled        bool
	SendReportFunc func(ctx context.Context, to string, result analysis.AnalysisResult) error
}

func (m *reportMock) Enabled() bool { return m.enabled }

func (m *reportMock) SendReport(ctx context.Context, to string, result analysis.AnalysisResult) error {
	return m.SendReportFunc(ctx, to, result)
}

var sample = &analysis.AnalysisResult{
	Summary:     "Steady week.",
	Emotions:    analysis.EmotionDistribution{"Neutral": 70, "Stress": 30},
	StressScore: 40,
	Emails:      []analysis.AnnotatedEmail{},
}

func newHandler(a *analyzerMock, o *oauthMock, r *reportMock) http.Handler {
	cfg := config.ServerConfig{
		FrontendURI:    "http://localhost:5173/dashboard",
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	if o == nil {
		o = &oauthMock{}
	}
	if r == nil {
		return web.NewServer(cfg, a, o, nil, zap.NewNop()).Handler()
	}
	return web.NewServer(cfg, a, o, r, zap.NewNop()).Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestFetchEmails(t *testing.T) {
	var got core.AnalysisRequest
	a := &analyzerMock{AnalyzeFunc: func(_ context.Context, req core.AnalysisRequest) (*analysis.AnalysisResult, error) {
		got = req
		return sample, nil
	}}

	rec := post(t, newHandler(a, nil, nil), "/api/fetch-emails", `{"token":"tok","count":"25","timeRange":"month"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.AnalysisRequest{Token: "tok", Count: 25, TimeRange: "month"}, got)

	var result analysis.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Steady week.", result.Summary)
	assert.Equal(t, 40, result.StressScore)
}

func TestFetchEmailsErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"missing token", `{"count":5}`, nil, http.StatusBadRequest, "Token is required"},
		{"bad json", `{"token":`, nil, http.StatusBadRequest, "Invalid request body"},
		{"expired token", `{"token":"t"}`, core.ErrUnauthorized, http.StatusUnauthorized, "Authentication expired, please sign in again"},
		{"upstream failure", `{"token":"t"}`, errors.New("boom"), http.StatusInternalServerError, "Failed to fetch and analyze emails"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &analyzerMock{AnalyzeFunc: func(context.Context, core.AnalysisRequest) (*analysis.AnalysisResult, error) {
				return nil, tc.err
			}}
			rec := post(t, newHandler(a, nil, nil), "/api/fetch-emails", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, errorOf(t, rec))
		})
	}
}

func TestDashboard(t *testing.T) {
	a := &analyzerMock{AnalyzeFunc: func(context.Context, core.AnalysisRequest) (*analysis.AnalysisResult, error) {
		return sample, nil
	}}
	h := newHandler(a, nil, nil)

	rec := post(t, h, "/api/dashboard", `{"token":"t","sort":"subject","direction":"asc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var view dashboard.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, dashboard.Options{Field: "subject", Direction: "asc"}, view.Sort)
	assert.Equal(t, "Moderate", view.Stress.Level)
	assert.Equal(t, "Neutral", view.Emotions[0].Label)

	// a posted result is re-validated instead of re-analyzed
	rec = post(t, h, "/api/dashboard", `{"result":{"summary":"","emotions":{"Joy":"300"},"stressScore":900,"emails":[]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, analysis.DefaultSummary, view.Summary)
	assert.Equal(t, 100, view.Stress.Score)
	require.Len(t, view.Emotions, 1)
	assert.Equal(t, 100.0, view.Emotions[0].Value)
}

func TestShare(t *testing.T) {
	var sentTo string
	var sent analysis.AnalysisResult
	reports := &reportMock{
		enabled: true,
		SendReportFunc: func(_ context.Context, to string, result analysis.AnalysisResult) error {
			if to == "bad" {
				return mailer.ErrInvalidRecipient
			}
			sentTo, sent = to, result
			return nil
		},
	}
	h := newHandler(nil, nil, reports)

	rec := post(t, h, "/api/share", `{"to":"sam@example.com","result":{"summary":"Fine.","stressScore":150}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sam@example.com", sentTo)
	assert.Equal(t, "Fine.", sent.Summary)
	assert.Equal(t, 100, sent.StressScore)

	rec = post(t, h, "/api/share", `{"to":"bad","result":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/api/share", `{"to":"sam@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Result is required", errorOf(t, rec))

	disabled := newHandler(nil, nil, &reportMock{enabled: false})
	rec = post(t, disabled, "/api/share", `{"to":"sam@example.com","result":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOAuthRedirects(t *testing.T) {
	o := &oauthMock{
		AuthURLFunc: func() (string, error) { return "https://accounts.example.com/auth?state=s1", nil },
		ExchangeFunc: func(_ context.Context, code, state string) (*oauth2.Token, error) {
			if code == "good" && state == "s1" {
				return &oauth2.Token{AccessToken: "ya29.abc"}, nil
			}
			return nil, errors.New("invalid state")
		},
	}
	h := newHandler(nil, o, nil)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/auth/google")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.example.com/auth?state=s1", rec.Header().Get("Location"))

	rec = get("/auth/google/callback?code=good&state=s1")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", loc.Path)
	assert.Equal(t, "ya29.abc", loc.Query().Get("token"))

	rec = get("/auth/google/callback?code=good&state=forged")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err = url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "auth_failed", loc.Query().Get("error"))
	assert.Empty(t, loc.Query().Get("token"))
}

func TestHealthAndCORS(t *testing.T) {
	h := newHandler(nil, nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodOptions, "/api/fetch-emails", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
