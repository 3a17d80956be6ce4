package core

import (
	"context"
	"errors"

	"github.com/mikey/inbox-therapist/internal/analysis"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// AnalyzeEmails sends the batch to the model and returns its raw reply.
	// Interpreting the reply is left to the analysis package.
	AnalyzeEmails(ctx context.Context, emails []analysis.EmailSummary) (string, error)

	// ModelName identifies the model, used to key cached results
	ModelName() string
}

// ErrUnauthorized is returned by a MailFetcher when the provider rejects the token
var ErrUnauthorized = errors.New("access token rejected by mail provider")

// MailFetcher retrieves recent messages for the owner of an access token
type MailFetcher interface {
	FetchEmails(ctx context.Context, token string, query FetchQuery) ([]analysis.EmailSummary, error)
}

// CacheRepository defines the interface for caching analysis results
type CacheRepository interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
