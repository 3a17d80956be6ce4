package di

import (
	"flag"
	"io"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/console"
	"github.com/mikey/inbox-therapist/internal/adapters/mailfile"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/dashboard"
	"github.com/mikey/inbox-therapist/internal/logging"
	"github.com/mikey/inbox-therapist/internal/senderfilter"
	"github.com/mikey/inbox-therapist/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	MaxTokens      int
	Temperature    float64
	TopP           float64
	MaxSnippetSize int

	// Bedrock flags
	BedrockRegion string

	// Analysis flags
	IgnoreDomains string
	Sort          string
	Direction     string
	ExportFile    string

	// Input flags
	Paths      []string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line arguments (without the program name).
// Positional arguments are .eml files or directories; "-" reads stdin.
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("mood-check", flag.ContinueOnError)

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", "groq", "LLM provider (groq, openai, gemini, bedrock)")
	fs.StringVar(&flags.Model, "model", "", "Model name or Bedrock model ID (provider default if empty)")
	fs.StringVar(&flags.APIKey, "api-key", "", "API key for the provider (defaults to <PROVIDER>_API_KEY)")
	fs.StringVar(&flags.BaseURL, "base-url", "", "Override the OpenAI-compatible endpoint")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 2048, "Maximum tokens for LLM response")
	fs.Float64Var(&flags.Temperature, "temperature", 0.7, "Temperature for LLM generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	fs.IntVar(&flags.MaxSnippetSize, "max-snippet-size", 500, "Maximum snippet size sent to the LLM per email")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")

	// Analysis flags
	fs.StringVar(&flags.IgnoreDomains, "ignore", "", "Comma-separated list of sender domains to skip")
	fs.StringVar(&flags.Sort, "sort", dashboard.SortByDate, "Sort emails by date, subject, sentiment or sentimentScore")
	fs.StringVar(&flags.Direction, "direction", dashboard.Descending, "Sort direction (asc, desc)")
	fs.StringVar(&flags.ExportFile, "export", "", "Write the analysis result as JSON to this file")

	// Input flags
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	flags.Paths = fs.Args()
	if len(flags.Paths) == 0 {
		flags.Paths = []string{"-"}
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if err := config.LoadEnvFile(".env"); err != nil {
			return nil, err
		}
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideAnalysis(container); err != nil {
		return nil, err
	}

	// Register mood service with no fetcher and no cache
	if err := container.Provide(func(
		llmClient core.LLMClient,
		filter *senderfilter.Checker,
		logger *zap.Logger,
		settings core.Settings,
	) *core.MoodService {
		return core.NewMoodService(llmClient, nil, nil, filter, logger, settings)
	}); err != nil {
		return nil, err
	}

	// Register message reader
	if err := container.Provide(func(cfg *config.Config, tp *utils.TextProcessor, logger *zap.Logger) *mailfile.Reader {
		return mailfile.NewReader(tp, cfg.GetAnalysis().MaxSnippetSize, logger)
	}); err != nil {
		return nil, err
	}

	// Register report printer
	if err := container.Provide(func(flags *CLIFlags) *console.Printer {
		return console.NewPrinter(out, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Nothing is cached between CLI runs
	v.Set("cache.enabled", false)

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	apiKey := flags.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(strings.ToUpper(flags.Provider) + "_API_KEY")
	}

	// Set provider-specific configuration
	switch flags.Provider {
	case "groq", "openai":
		v.Set(flags.Provider+".api_key", apiKey)
		if flags.Model != "" {
			v.Set(flags.Provider+".model_name", flags.Model)
		}
		if flags.BaseURL != "" {
			v.Set(flags.Provider+".base_url", flags.BaseURL)
		}
		v.Set(flags.Provider+".max_tokens", flags.MaxTokens)
		v.Set(flags.Provider+".temperature", flags.Temperature)
		v.Set(flags.Provider+".top_p", flags.TopP)
	case "gemini":
		v.Set("gemini.api_key", apiKey)
		if flags.Model != "" {
			v.Set("gemini.model_name", flags.Model)
		}
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		if flags.Model != "" {
			v.Set("bedrock.model_id", flags.Model)
		}
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
	}

	v.Set("analysis.max_snippet_size", flags.MaxSnippetSize)

	// Set ignored sender domains
	if flags.IgnoreDomains != "" {
		domains := strings.Split(flags.IgnoreDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("analysis.ignored_domains", domains)
	}

	return config.NewFromViper(v)
}
