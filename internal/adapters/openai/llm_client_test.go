package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/openai"
	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/prompt"
	"github.com/mikey/inbox-therapist/internal/utils"
)

func newServer(t *testing.T, status int, body string, got *map[string]any) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(baseURL string) *openai.OpenAIClient {
	builder := prompt.NewBuilder(utils.NewTextProcessor(zap.NewNop()), 200)
	return openai.NewOpenAIClient(config.ChatModelConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		ModelName:   "llama3-8b-8192",
		MaxTokens:   512,
		Temperature: 0.7,
		TopP:        1,
	}, zap.NewNop(), builder)
}

func TestAnalyzeEmailsReturnsRawReply(t *testing.T) {
	var req map[string]any
	srv := newServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Here: {\"summary\":\"ok\"}"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`, &req)

	client := newClient(srv.URL + "/v1")
	emails := []analysis.EmailSummary{analysis.NewEmailSummary("1", "Hi", "a@example.com", nil, "hello")}

	reply, err := client.AnalyzeEmails(context.Background(), emails)
	require.NoError(t, err)
	assert.Equal(t, `Here: {"summary":"ok"}`, reply)
	assert.Equal(t, "llama3-8b-8192", client.ModelName())

	assert.Equal(t, "llama3-8b-8192", req["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
	messages, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, prompt.SystemPrompt, messages[0].(map[string]any)["content"])
	assert.Contains(t, messages[1].(map[string]any)["content"], "Subject: Hi")
}

func TestAnalyzeEmailsErrors(t *testing.T) {
	emails := []analysis.EmailSummary{analysis.NewEmailSummary("1", "Hi", "a@example.com", nil, "hello")}

	srv := newServer(t, http.StatusOK, `{"id":"x","choices":[]}`, nil)
	_, err := newClient(srv.URL+"/v1").AnalyzeEmails(context.Background(), emails)
	assert.ErrorIs(t, err, openai.ErrEmptyResponse)

	srv = newServer(t, http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"rate_limit"}}`, nil)
	_, err = newClient(srv.URL+"/v1").AnalyzeEmails(context.Background(), emails)
	assert.ErrorContains(t, err, "failed to create chat completion")
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	builder := prompt.NewBuilder(utils.NewTextProcessor(zap.NewNop()), 200)
	f := openai.NewFactory(config.NewFromViper(config.NewEmptyViper()), zap.NewNop(), builder)

	_, err := f.CreateGroqClient()
	assert.ErrorContains(t, err, "groq.api_key")

	v := config.NewEmptyViper()
	v.Set("groq.api_key", "k")
	client, err := openai.NewFactory(config.NewFromViper(v), zap.NewNop(), builder).CreateGroqClient()
	require.NoError(t, err)
	assert.Equal(t, "llama3-8b-8192", client.ModelName())
}
