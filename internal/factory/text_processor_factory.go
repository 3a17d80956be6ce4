package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/prompt"
	"github.com/mikey/inbox-therapist/internal/utils"
)

// TextProcessorFactory creates text processors and the prompt builder on top of them
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreatePromptBuilder creates a prompt builder trimming snippets to analysis.max_snippet_size
func (f *TextProcessorFactory) CreatePromptBuilder(tp *utils.TextProcessor) *prompt.Builder {
	return prompt.NewBuilder(tp, f.cfg.GetAnalysis().MaxSnippetSize)
}
