package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/bedrock"
	"github.com/mikey/inbox-therapist/internal/adapters/gemini"
	"github.com/mikey/inbox-therapist/internal/adapters/openai"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/prompt"
)

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	prompts *prompt.Builder
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, prompts *prompt.Builder) *LLMFactory {
	return &LLMFactory{
		cfg:     cfg,
		logger:  logger,
		prompts: prompts,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration. Clients
// that hold connections implement io.Closer.
func (f *LLMFactory) CreateLLMClient(ctx context.Context) (core.LLMClient, error) {
	provider := f.cfg.GetLLM().Provider

	switch provider {
	case "groq", "":
		return openai.NewFactory(f.cfg, f.logger, f.prompts).CreateGroqClient()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.prompts).CreateLLMClient()
	case "gemini":
		client, err := gemini.NewFactory(f.cfg, f.logger, f.prompts).CreateClient(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "bedrock":
		client, err := bedrock.NewFactory(f.cfg, f.logger, f.prompts).CreateClient(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
