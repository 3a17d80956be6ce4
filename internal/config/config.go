package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envAliases binds the plain variable names used by existing deployments
// (and by .env files) alongside the prefixed ones.
var envAliases = map[string]string{
	"server.port":         "PORT",
	"server.frontend_uri": "FRONTEND_URI",
	"oauth.client_id":     "GOOGLE_CLIENT_ID",
	"oauth.client_secret": "GOOGLE_CLIENT_SECRET",
	"oauth.redirect_uri":  "REDIRECT_URI",
	"groq.api_key":        "GROQ_API_KEY",
	"openai.api_key":      "OPENAI_API_KEY",
	"gemini.api_key":      "GEMINI_API_KEY",
}

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. A .env file in the working
// directory, when present, is loaded into the environment first.
func New() (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/inbox-therapist/")
	v.AddConfigPath("$HOME/.inbox-therapist")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("INBOX_THERAPIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindAliases(v); err != nil {
		return nil, err
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile loads configuration from an explicit file path.
func NewFromFile(path string) (*Config, error) {
	v := NewEmptyViper()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("INBOX_THERAPIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindAliases(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// LoadEnvFile loads variables from a dotenv file without overriding ones
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func bindAliases(v *viper.Viper) error {
	for key, alias := range envAliases {
		prefixed := "INBOX_THERAPIST_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "groq")

	// Server defaults
	v.SetDefault("server.port", 5050)
	v.SetDefault("server.host", "")
	v.SetDefault("server.frontend_uri", "http://localhost:5173")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.request_timeout", "80s")

	// OAuth defaults
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_uri", "http://localhost:5050/auth/google/callback")
	v.SetDefault("oauth.state_ttl", "5m")

	// Analysis defaults
	v.SetDefault("analysis.default_count", 10)
	v.SetDefault("analysis.max_count", 50)
	v.SetDefault("analysis.default_time_range", "week")
	v.SetDefault("analysis.max_snippet_size", 500)
	v.SetDefault("analysis.ignored_domains", []string{})

	// Groq defaults (OpenAI-compatible endpoint)
	v.SetDefault("groq.api_key", "")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model_name", "llama3-8b-8192")
	v.SetDefault("groq.max_tokens", 2048)
	v.SetDefault("groq.temperature", 0.7)
	v.SetDefault("groq.top_p", 1.0)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 2048)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.top_p", 1.0)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 2048)
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 2048)
	v.SetDefault("bedrock.temperature", 0.7)
	v.SetDefault("bedrock.top_p", 0.9)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("cache.cleanup_frequency", "5m")
	v.SetDefault("cache.sqlite_path", "/data/inbox_therapist.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/inbox_therapist?parseTime=true")

	// Share report defaults
	v.SetDefault("report.enabled", false)
	v.SetDefault("report.smtp_address", "localhost:25")
	v.SetDefault("report.from", "inbox-therapist@localhost")
	v.SetDefault("report.subject", "Your Inbox Therapist analysis")
	v.SetDefault("report.timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
