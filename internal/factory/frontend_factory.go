package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/mailer"
	"github.com/mikey/inbox-therapist/internal/adapters/web"
	"github.com/mikey/inbox-therapist/internal/auth"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/ports"
)

// FrontendFactory creates the HTTP frontend and its collaborators
type FrontendFactory struct {
	cfg         *config.Config
	logger      *zap.Logger
	moodService *core.MoodService
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, moodService *core.MoodService) *FrontendFactory {
	return &FrontendFactory{
		cfg:         cfg,
		logger:      logger,
		moodService: moodService,
	}
}

// CreateFrontend creates the web API server
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	oauthCfg, err := f.cfg.GetOAuth()
	if err != nil {
		return nil, fmt.Errorf("invalid oauth configuration: %w", err)
	}
	if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
		f.logger.Warn("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set, sign-in will fail")
	}

	reports, err := f.CreateReportSender()
	if err != nil {
		return nil, err
	}

	authenticator := auth.NewAuthenticator(auth.NewGoogleConfig(oauthCfg), oauthCfg.StateTTL, f.logger)
	return web.NewServer(serverCfg, f.moodService, authenticator, reports, f.logger), nil
}

// CreateReportSender creates the share-by-email mailer
func (f *FrontendFactory) CreateReportSender() (ports.ReportSender, error) {
	reportCfg, err := f.cfg.GetReport()
	if err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return mailer.NewMailer(reportCfg, f.logger), nil
}
