package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/prompt"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg     *config.Config
	logger  *zap.Logger
	prompts *prompt.Builder
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, prompts *prompt.Builder) *Factory {
	return &Factory{
		cfg:     cfg,
		logger:  logger,
		prompts: prompts,
	}
}

// CreateClient creates a new GeminiClient. The caller owns the client and
// must Close it.
func (f *Factory) CreateClient(ctx context.Context) (*GeminiClient, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini.api_key is required")
	}

	f.logger.Info("Using Gemini", zap.String("model", geminiCfg.ModelName))
	return NewGeminiClient(ctx, geminiCfg, f.logger, f.prompts)
}
