package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/prompt"
)

// ErrEmptyResponse is returned when Gemini answers without a usable candidate
var ErrEmptyResponse = errors.New("empty response from Gemini")

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
	prompts   *prompt.Builder
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	cfg config.GeminiConfig,
	logger *zap.Logger,
	prompts *prompt.Builder,
	opts ...option.ClientOption,
) (*GeminiClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(cfg.TopP)
	model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemPrompt)},
	}

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: cfg.ModelName,
		logger:    logger,
		prompts:   prompts,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ModelName returns the configured model
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// AnalyzeEmails sends the batch and returns the raw reply text
func (c *GeminiClient) AnalyzeEmails(ctx context.Context, emails []analysis.EmailSummary) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(c.prompts.Build(emails)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	if resp.UsageMetadata != nil {
		c.logger.Debug("Gemini response received",
			zap.String("model", c.modelName),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("candidate_tokens", resp.UsageMetadata.CandidatesTokenCount))
	}

	return text, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
