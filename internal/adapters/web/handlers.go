package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/mailer"
	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/dashboard"
)

// flexInt accepts a JSON number or a numeric string
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

type analyzeRequest struct {
	Token     string  `json:"token"`
	Count     flexInt `json:"count"`
	TimeRange string  `json:"timeRange"`
}

func (r analyzeRequest) toCore() core.AnalysisRequest {
	return core.AnalysisRequest{Token: r.Token, Count: int(r.Count), TimeRange: r.TimeRange}
}

type dashboardRequest struct {
	analyzeRequest
	Sort      string          `json:"sort"`
	Direction string          `json:"direction"`
	Result    json.RawMessage `json:"result,omitempty"`
}

type shareRequest struct {
	To     string          `json:"to"`
	Result json.RawMessage `json:"result"`
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fetchEmailsHandler(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}

	result, ok := s.analyze(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if !decode(w, r, &req) {
		return
	}

	var result analysis.AnalysisResult
	if len(req.Result) > 0 {
		decoded, err := analysis.DecodeResult(req.Result)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid analysis result")
			return
		}
		result = decoded
	} else {
		analyzed, ok := s.analyze(w, r, req.analyzeRequest)
		if !ok {
			return
		}
		result = *analyzed
	}

	view := dashboard.Build(result, dashboard.Options{Field: req.Sort, Direction: req.Direction})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) shareHandler(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil || !s.reports.Enabled() {
		writeError(w, http.StatusNotFound, "Sharing by email is disabled")
		return
	}

	var req shareRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Result) == 0 {
		writeError(w, http.StatusBadRequest, "Result is required")
		return
	}

	result, err := analysis.DecodeResult(req.Result)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid analysis result")
		return
	}

	if err := s.reports.SendReport(r.Context(), req.To, result); err != nil {
		if errors.Is(err, mailer.ErrInvalidRecipient) {
			writeError(w, http.StatusBadRequest, "A valid recipient address is required")
			return
		}
		s.logger.Error("Failed to send report", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to send report")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.oauth.AuthURL()
	if err != nil {
		s.logger.Error("Failed to build consent URL", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to start authentication")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) callbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tok, err := s.oauth.Exchange(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		s.logger.Warn("OAuth callback failed", zap.Error(err), zap.String("provider_error", q.Get("error")))
		http.Redirect(w, r, s.frontendURL("error", "auth_failed"), http.StatusFound)
		return
	}

	http.Redirect(w, r, s.frontendURL("token", tok.AccessToken), http.StatusFound)
}

// analyze runs the service and writes the error response itself when it fails
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, req analyzeRequest) (*analysis.AnalysisResult, bool) {
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Token is required")
		return nil, false
	}

	result, err := s.analyzer.Analyze(r.Context(), req.toCore())
	switch {
	case err == nil:
		return result, true
	case errors.Is(err, core.ErrMissingToken):
		writeError(w, http.StatusBadRequest, "Token is required")
	case errors.Is(err, core.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Authentication expired, please sign in again")
	default:
		s.logger.Error("Failed to fetch and analyze emails", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch and analyze emails")
	}
	return nil, false
}

func (s *Server) frontendURL(key, value string) string {
	u, err := url.Parse(s.cfg.FrontendURI)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
