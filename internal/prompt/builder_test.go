package prompt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/prompt"
	"github.com/mikey/inbox-therapist/internal/utils"
)

func TestBuild(t *testing.T) {
	sent := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	emails := []analysis.EmailSummary{
		analysis.NewEmailSummary("1", "Deadline\r\nmoved", "Boss <boss@example.com>", &sent, "We need\n\nthe report by Friday."),
		analysis.NewEmailSummary("2", "", "", nil, strings.Repeat("x", 100)),
	}

	b := prompt.NewBuilder(utils.NewTextProcessor(zap.NewNop()), 20)
	out := b.Build(emails)

	assert.Contains(t, out, "following 2 emails")
	assert.Contains(t, out, "exactly 2 entries")
	assert.Contains(t, out, "Email 1:\nFrom: Boss <boss@example.com>\nSubject: Deadline moved\nDate: Fri, 14 Mar 2025 09:30:00 +0000\nContent: We need the report b"+utils.TruncationMarker)
	assert.Contains(t, out, "Email 2:\nFrom: Unknown Sender\nSubject: No Subject\nContent: "+strings.Repeat("x", 20)+utils.TruncationMarker)
	assert.Less(t, strings.Index(out, "Email 1:"), strings.Index(out, "Email 2:"))
	assert.NotContains(t, out, "Email 3:")
}
