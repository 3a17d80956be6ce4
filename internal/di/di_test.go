package di

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/inbox-therapist/internal/adapters/console"
	"github.com/mikey/inbox-therapist/internal/adapters/mailfile"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/ports"
	"github.com/mikey/inbox-therapist/internal/senderfilter"
)

func TestParseFlags(t *testing.T) {
	flags, err := ParseFlags([]string{"-provider", "openai", "-ignore", "news.example, ads.example", "a.eml", "inbox/"})
	require.NoError(t, err)

	assert.Equal(t, "openai", flags.Provider)
	assert.Equal(t, []string{"a.eml", "inbox/"}, flags.Paths)
	assert.Equal(t, "date", flags.Sort)

	flags, err = ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"-"}, flags.Paths)

	_, err = ParseFlags([]string{"-max-tokens", "lots"})
	assert.Error(t, err)
}

func TestCreateConfigFromFlags(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	flags, err := ParseFlags([]string{"-provider", "gemini", "-model", "gemini-1.5-pro", "-ignore", "news.example, ads.example"})
	require.NoError(t, err)
	cfg := createConfigFromFlags(flags)

	gemini := cfg.GetGemini()
	assert.Equal(t, "from-env", gemini.APIKey)
	assert.Equal(t, "gemini-1.5-pro", gemini.ModelName)
	assert.Equal(t, []string{"news.example", "ads.example"}, cfg.GetAnalysis().IgnoredDomains)

	cacheCfg, err := cfg.GetCache()
	require.NoError(t, err)
	assert.False(t, cacheCfg.Enabled)
}

func TestBuildCLIContainer(t *testing.T) {
	flags, err := ParseFlags([]string{"-provider", "groq", "-api-key", "gsk-test", "-model", "llama-test", "-ignore", "news.example"})
	require.NoError(t, err)

	container, err := BuildCLIContainer(flags, &bytes.Buffer{})
	require.NoError(t, err)

	err = container.Invoke(func(
		llmClient core.LLMClient,
		service *core.MoodService,
		reader *mailfile.Reader,
		printer *console.Printer,
		filter *senderfilter.Checker,
	) {
		assert.Equal(t, "llama-test", llmClient.ModelName())
		assert.NotNil(t, service)
		assert.NotNil(t, reader)
		assert.NotNil(t, printer)
		assert.True(t, filter.IsIgnored("digest@news.example"))
	})
	require.NoError(t, err)
}

func TestBuildCLIContainerMissingKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	flags, err := ParseFlags([]string{"-provider", "groq"})
	require.NoError(t, err)

	container, err := BuildCLIContainer(flags, &bytes.Buffer{})
	require.NoError(t, err)

	err = container.Invoke(func(core.LLMClient) {})
	assert.ErrorContains(t, err, "groq.api_key is required")
}

func TestBuildContainer(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("INBOX_THERAPIST_CACHE_ENABLED", "false")

	container, err := BuildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(frontend ports.Frontend, settings core.Settings) {
		assert.NotNil(t, frontend)
		assert.False(t, settings.CacheEnabled)
		assert.Equal(t, 10, settings.DefaultCount)
	})
	require.NoError(t, err)
}
