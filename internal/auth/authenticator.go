// Package auth runs the Google OAuth2 authorization-code flow for the web API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/mikey/inbox-therapist/internal/config"
)

var (
	// ErrInvalidState indicates the callback carried an unknown or expired state
	ErrInvalidState = errors.New("invalid or expired state parameter")
	// ErrMissingCode indicates the callback carried no authorization code
	ErrMissingCode = errors.New("authorization code is required")
)

// NewGoogleConfig builds the OAuth client for read-only Gmail access
func NewGoogleConfig(cfg config.OAuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// Authenticator issues consent URLs and exchanges authorization codes. It
// keeps no tokens: the access token goes straight back to the browser.
type Authenticator struct {
	mu         sync.Mutex
	cfg        *oauth2.Config
	stateTTL   time.Duration
	stateStore map[string]time.Time
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(cfg *oauth2.Config, stateTTL time.Duration, logger *zap.Logger) *Authenticator {
	if stateTTL <= 0 {
		stateTTL = 5 * time.Minute
	}
	return &Authenticator{
		cfg:        cfg,
		stateTTL:   stateTTL,
		stateStore: make(map[string]time.Time),
		logger:     logger,
		now:        time.Now,
	}
}

// AuthURL generates the consent URL with a fresh random state
func (a *Authenticator) AuthURL() (string, error) {
	state, err := a.generateState()
	if err != nil {
		return "", fmt.Errorf("generateState failed: %w", err)
	}

	return a.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange validates the state and trades the code for a token
func (a *Authenticator) Exchange(ctx context.Context, code, state string) (*oauth2.Token, error) {
	if !a.validateState(state) {
		return nil, ErrInvalidState
	}
	if code == "" {
		return nil, ErrMissingCode
	}

	tok, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	a.logger.Info("OAuth code exchanged",
		zap.Bool("refresh_token", tok.RefreshToken != ""),
		zap.Time("expiry", tok.Expiry))

	return tok, nil
}

func (a *Authenticator) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	a.stateStore[state] = now.Add(a.stateTTL)

	for s, exp := range a.stateStore {
		if exp.Before(now) {
			delete(a.stateStore, s)
		}
	}

	return state, nil
}

// validateState consumes the state; a state is good for one callback only
func (a *Authenticator) validateState(state string) bool {
	if state == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	expiry, exists := a.stateStore[state]
	if !exists {
		return false
	}

	delete(a.stateStore, state)

	return !a.now().After(expiry)
}
