package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/gmail"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/factory"
	"github.com/mikey/inbox-therapist/internal/logging"
	"github.com/mikey/inbox-therapist/internal/ports"
	"github.com/mikey/inbox-therapist/internal/prompt"
	"github.com/mikey/inbox-therapist/internal/senderfilter"
	"github.com/mikey/inbox-therapist/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideAnalysis(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register mailbox fetcher
	if err := container.Provide(func(logger *zap.Logger) core.MailFetcher {
		return gmail.NewFetcher(logger)
	}); err != nil {
		return nil, err
	}

	// Register mood service
	if err := container.Provide(core.NewMoodService); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideAnalysis registers everything needed to analyze a batch: the prompt
// builder, the LLM client, the sender filter and the service settings. Both
// containers share it.
func provideAnalysis(container *dig.Container) error {
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory, tp *utils.TextProcessor) *prompt.Builder {
		return f.CreatePromptBuilder(tp)
	}); err != nil {
		return err
	}

	// Register LLM client
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient(context.Background())
	}); err != nil {
		return err
	}

	// Register ignored sender domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *senderfilter.Checker {
		domains := cfg.GetAnalysis().IgnoredDomains
		if len(domains) > 0 {
			logger.Info("Loaded ignored sender domains", zap.Strings("domains", domains))
		}
		return senderfilter.NewChecker(domains, logger)
	}); err != nil {
		return err
	}

	// Register service settings
	return container.Provide(settings)
}

func settings(cfg *config.Config) (core.Settings, error) {
	analysisCfg := cfg.GetAnalysis()
	cacheCfg, err := cfg.GetCache()
	if err != nil {
		return core.Settings{}, err
	}

	return core.Settings{
		CacheEnabled:     cacheCfg.Enabled,
		CacheTTL:         cacheCfg.TTL,
		DefaultCount:     analysisCfg.DefaultCount,
		MaxCount:         analysisCfg.MaxCount,
		DefaultTimeRange: core.TimeRange(analysisCfg.DefaultTimeRange),
	}, nil
}
