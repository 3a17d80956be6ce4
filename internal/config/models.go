package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// ChatModelConfig represents an OpenAI-compatible chat completion endpoint
// (OpenAI itself or Groq)
type ChatModelConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Host            string
	Port            int
	FrontendURI     string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OAuthConfig represents the Google OAuth client registration
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	StateTTL     time.Duration
}

// AnalysisConfig controls how mailbox batches are selected and trimmed
type AnalysisConfig struct {
	DefaultCount     int
	MaxCount         int
	DefaultTimeRange string
	MaxSnippetSize   int
	IgnoredDomains   []string
}

// CacheConfig represents the analysis result cache configuration
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// ReportConfig represents the share-by-email configuration
type ReportConfig struct {
	Enabled     bool
	SMTPAddress string
	From        string
	Subject     string
	Timeout     time.Duration
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() ChatModelConfig {
	return c.chatModel("openai")
}

// GetGroq returns the Groq configuration
func (c *Config) GetGroq() ChatModelConfig {
	return c.chatModel("groq")
}

func (c *Config) chatModel(section string) ChatModelConfig {
	return ChatModelConfig{
		APIKey:      c.GetString(section + ".api_key"),
		BaseURL:     c.GetString(section + ".base_url"),
		ModelName:   c.GetString(section + ".model_name"),
		MaxTokens:   c.GetInt(section + ".max_tokens"),
		Temperature: float32(c.GetFloat64(section + ".temperature")),
		TopP:        float32(c.GetFloat64(section + ".top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	durations, err := c.durations("server.read_timeout", "server.write_timeout", "server.shutdown_timeout", "server.request_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		Host:            c.GetString("server.host"),
		Port:            c.GetInt("server.port"),
		FrontendURI:     c.GetString("server.frontend_uri"),
		AllowedOrigins:  c.GetStringSlice("server.allowed_origins"),
		ReadTimeout:     durations[0],
		WriteTimeout:    durations[1],
		ShutdownTimeout: durations[2],
		RequestTimeout:  durations[3],
	}, nil
}

// GetOAuth returns the OAuth client configuration
func (c *Config) GetOAuth() (OAuthConfig, error) {
	ttl, err := c.GetDuration("oauth.state_ttl")
	if err != nil {
		return OAuthConfig{}, err
	}
	return OAuthConfig{
		ClientID:     c.GetString("oauth.client_id"),
		ClientSecret: c.GetString("oauth.client_secret"),
		RedirectURI:  c.GetString("oauth.redirect_uri"),
		StateTTL:     ttl,
	}, nil
}

// GetAnalysis returns the batch selection configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		DefaultCount:     c.GetInt("analysis.default_count"),
		MaxCount:         c.GetInt("analysis.max_count"),
		DefaultTimeRange: c.GetString("analysis.default_time_range"),
		MaxSnippetSize:   c.GetInt("analysis.max_snippet_size"),
		IgnoredDomains:   c.GetStringSlice("analysis.ignored_domains"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	durations, err := c.durations("cache.ttl", "cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              durations[0],
		CleanupFrequency: durations[1],
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetReport returns the share report configuration
func (c *Config) GetReport() (ReportConfig, error) {
	timeout, err := c.GetDuration("report.timeout")
	if err != nil {
		return ReportConfig{}, err
	}
	return ReportConfig{
		Enabled:     c.GetBool("report.enabled"),
		SMTPAddress: c.GetString("report.smtp_address"),
		From:        c.GetString("report.from"),
		Subject:     c.GetString("report.subject"),
		Timeout:     timeout,
	}, nil
}

func (c *Config) durations(keys ...string) ([]time.Duration, error) {
	out := make([]time.Duration, len(keys))
	for i, key := range keys {
		d, err := c.GetDuration(key)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
