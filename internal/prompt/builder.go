// Package prompt renders the analysis request sent to the language model.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/utils"
)

// SystemPrompt is sent as the system message for chat-style models
const SystemPrompt = "You are a psychological AI that outputs strictly valid JSON."

const instructions = `Analyze the emotional tone of the following %d emails from the user's inbox.

Respond with a single JSON object and nothing else, using exactly this shape:
{
  "summary": "2-3 sentences on the overall emotional state this inbox suggests",
  "emotions": {"<Emotion>": <percentage>, ...},
  "stressScore": <integer 0-100>,
  "emails": [{"sentiment": "<one word>", "sentimentScore": <integer 0-100>}, ...]
}

Rules:
- "emotions" percentages must add up to 100. Prefer labels such as Stress, Anxiety, Frustration, Worry, Neutral, Calm, Joy, Happiness, Excitement, Satisfaction.
- "emails" must contain exactly %d entries, in the same order as the emails below.
- Higher scores mean more stress.

Emails:
`

// Builder renders prompts with snippets trimmed to a fixed size
type Builder struct {
	textProcessor  *utils.TextProcessor
	maxSnippetSize int
}

// NewBuilder creates a new prompt builder
func NewBuilder(textProcessor *utils.TextProcessor, maxSnippetSize int) *Builder {
	return &Builder{
		textProcessor:  textProcessor,
		maxSnippetSize: maxSnippetSize,
	}
}

// Build renders the user prompt for a batch. Emails are numbered in batch
// order because the model's verdicts are matched back by position.
func (b *Builder) Build(emails []analysis.EmailSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, instructions, len(emails), len(emails))

	for i, email := range emails {
		fmt.Fprintf(&sb, "\nEmail %d:\n", i+1)
		fmt.Fprintf(&sb, "From: %s\n", b.line(email.Sender))
		fmt.Fprintf(&sb, "Subject: %s\n", b.line(email.Subject))
		if email.SentAt != nil {
			fmt.Fprintf(&sb, "Date: %s\n", email.SentAt.UTC().Format(time.RFC1123Z))
		}
		fmt.Fprintf(&sb, "Content: %s\n", b.textProcessor.ProcessText(email.Snippet, b.maxSnippetSize))
	}

	return sb.String()
}

func (b *Builder) line(s string) string {
	return b.textProcessor.CollapseWhitespace(b.textProcessor.SanitizeUTF8(s))
}
