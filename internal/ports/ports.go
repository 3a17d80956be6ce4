// Package ports holds the interfaces the outer adapters depend on.
package ports

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/core"
)

// Frontend is a long-running entry point of the application
type Frontend interface {
	// Start starts serving in the background
	Start() error

	// Stop stops serving, waiting for in-flight requests
	Stop() error
}

// Analyzer runs an analysis for an access token
type Analyzer interface {
	Analyze(ctx context.Context, req core.AnalysisRequest) (*analysis.AnalysisResult, error)
}

// OAuthFlow issues consent URLs and exchanges authorization codes
type OAuthFlow interface {
	AuthURL() (string, error)
	Exchange(ctx context.Context, code, state string) (*oauth2.Token, error)
}

// ReportSender delivers a result to an email address
type ReportSender interface {
	Enabled() bool
	SendReport(ctx context.Context, to string, result analysis.AnalysisResult) error
}
