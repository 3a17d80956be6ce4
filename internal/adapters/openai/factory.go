package openai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/prompt"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg     *config.Config
	logger  *zap.Logger
	prompts *prompt.Builder
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, prompts *prompt.Builder) *Factory {
	return &Factory{
		cfg:     cfg,
		logger:  logger,
		prompts: prompts,
	}
}

// CreateLLMClient creates a client against api.openai.com
func (f *Factory) CreateLLMClient() (core.LLMClient, error) {
	return f.create("openai", f.cfg.GetOpenAI())
}

// CreateGroqClient creates a client against Groq's OpenAI-compatible endpoint
func (f *Factory) CreateGroqClient() (core.LLMClient, error) {
	return f.create("groq", f.cfg.GetGroq())
}

func (f *Factory) create(provider string, cfg config.ChatModelConfig) (core.LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s.api_key is required", provider)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%s.model_name is required", provider)
	}

	f.logger.Info("Using chat completion provider",
		zap.String("provider", provider),
		zap.String("model", cfg.ModelName))

	return NewOpenAIClient(cfg, f.logger, f.prompts), nil
}
