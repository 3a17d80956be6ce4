// Package web serves the JSON API and the OAuth redirects used by the browser
// dashboard.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/ports"
)

const maxBodyBytes = 1 << 20

// Server is the HTTP frontend
type Server struct {
	cfg        config.ServerConfig
	analyzer   ports.Analyzer
	oauth      ports.OAuthFlow
	reports    ports.ReportSender
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP frontend. reports may be nil.
func NewServer(
	cfg config.ServerConfig,
	analyzer ports.Analyzer,
	oauth ports.OAuthFlow,
	reports ports.ReportSender,
	logger *zap.Logger,
) *Server {
	return &Server{
		cfg:      cfg,
		analyzer: analyzer,
		oauth:    oauth,
		reports:  reports,
		logger:   logger,
	}
}

// Handler builds the router with all middleware applied
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}).Handler)
	if s.cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	router.Get("/healthz", s.healthHandler)

	router.Route("/auth/google", func(r chi.Router) {
		r.Get("/", s.loginHandler)
		r.Get("/callback", s.callbackHandler)
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/fetch-emails", s.fetchEmailsHandler)
		r.Post("/dashboard", s.dashboardHandler)
		r.Post("/share", s.shareHandler)
	})

	return router
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("HTTP server starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
