package analysis_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/inbox-therapist/internal/analysis"
)

func batch(n int) []analysis.EmailSummary {
	sent := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	emails := make([]analysis.EmailSummary, n)
	for i := range emails {
		id := string(rune('a' + i))
		emails[i] = analysis.NewEmailSummary("m-"+id, "Subject "+id, "sender-"+id+"@example.com", &sent, "snippet "+id)
	}
	return emails
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected map[string]any
		kind     error
	}{
		{
			name:     "bare object",
			raw:      `{"summary":"ok"}`,
			expected: map[string]any{"summary": "ok"},
		},
		{
			name:     "surrounded by prose",
			raw:      "Sure! Here is the analysis:\n```json\n{\"summary\":\"ok\",\"stressScore\":40}\n```\nLet me know.",
			expected: map[string]any{"summary": "ok", "stressScore": float64(40)},
		},
		{
			name: "no braces",
			raw:  "I'm sorry, I can't help with that.",
			kind: analysis.ErrNoJSONFound,
		},
		{
			name: "only an opening brace",
			raw:  "{ summary",
			kind: analysis.ErrNoJSONFound,
		},
		{
			name: "broken object",
			raw:  `{"summary": }`,
			kind: analysis.ErrInvalidJSON,
		},
		{
			name: "braces in the wrong order",
			raw:  "} nothing here {",
			kind: analysis.ErrInvalidJSON,
		},
		{
			name: "two objects",
			raw:  `{"a":1} and {"b":2}`,
			kind: analysis.ErrInvalidJSON,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obj, err := analysis.ExtractJSON(tc.raw)
			if tc.kind != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.kind), "expected %v, got %v", tc.kind, err)

				var failure *analysis.ParseFailure
				require.True(t, errors.As(err, &failure))
				assert.Equal(t, tc.kind, failure.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, obj)
		})
	}
}

func TestExtractJSONKeepsOffendingFragment(t *testing.T) {
	_, err := analysis.ExtractJSON(`prefix {"summary": oops} suffix`)
	require.Error(t, err)

	var failure *analysis.ParseFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, `{"summary": oops}`, failure.Fragment)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestNormalizeWellFormedReply(t *testing.T) {
	emails := batch(2)
	raw := `Analysis follows.
{
  "summary": "Mostly calm week.",
  "emotions": {"Stress": "40%", "Joy": 60},
  "stressScore": "87%",
  "emails": [
    {"sentiment": "Anxious", "sentimentScore": 72},
    {"sentiment": "Calm", "sentimentScore": "20%"}
  ]
}`

	result := analysis.Normalize(raw, emails)

	assert.Equal(t, "Mostly calm week.", result.Summary)
	assert.Equal(t, analysis.EmotionDistribution{"Stress": 40, "Joy": 60}, result.Emotions)
	assert.Equal(t, 87, result.StressScore)
	require.Len(t, result.Emails, 2)
	assert.Equal(t, "Anxious", result.Emails[0].Sentiment)
	assert.Equal(t, 72, result.Emails[0].SentimentScore)
	assert.Equal(t, "Calm", result.Emails[1].Sentiment)
	assert.Equal(t, 20, result.Emails[1].SentimentScore)
	assert.Equal(t, emails[0], result.Emails[0].EmailSummary)
	assert.Equal(t, emails[1], result.Emails[1].EmailSummary)
}

func TestNormalizeFallsBackOnUnparseableReply(t *testing.T) {
	emails := batch(3)

	for _, raw := range []string{
		"",
		"I'm sorry, I cannot analyze these emails.",
		`{"summary": "unterminated`,
		`{"summary": "x", "emotions": {"Joy": 100},}`,
	} {
		t.Run(raw, func(t *testing.T) {
			result, err := analysis.Parse(raw, emails)
			require.Error(t, err)

			assert.Equal(t, analysis.Fallback(emails), result)
			assert.Equal(t, analysis.FallbackSummary, result.Summary)
			assert.Equal(t, analysis.EmotionDistribution{"Neutral": 50, "Stress": 25, "Joy": 25}, result.Emotions)
			assert.Equal(t, 50, result.StressScore)
			require.Len(t, result.Emails, len(emails))
			for i, e := range result.Emails {
				assert.Equal(t, emails[i], e.EmailSummary)
				assert.Equal(t, "Neutral", e.Sentiment)
				assert.Equal(t, 50, e.SentimentScore)
			}
		})
	}
}

func TestNormalizeDefaultsMissingFields(t *testing.T) {
	emails := batch(2)

	result := analysis.Normalize(`{}`, emails)

	assert.Equal(t, analysis.DefaultSummary, result.Summary)
	assert.Equal(t, analysis.EmotionDistribution{"Neutral": 100}, result.Emotions)
	assert.Equal(t, 50, result.StressScore)
	require.Len(t, result.Emails, 2)
	assert.Equal(t, "Neutral", result.Emails[1].Sentiment)
}

func TestNormalizeAcceptsSnakeCaseScores(t *testing.T) {
	result := analysis.Normalize(`{"stress_score": 12, "emails": [{"sentiment": "Joy", "sentiment_score": 9}]}`, batch(1))

	assert.Equal(t, 12, result.StressScore)
	assert.Equal(t, 9, result.Emails[0].SentimentScore)
}

func TestNormalizeEmptyBatch(t *testing.T) {
	result := analysis.Normalize(`{"summary":"s","emails":[{"sentiment":"Joy"}]}`, nil)

	assert.NotNil(t, result.Emails)
	assert.Empty(t, result.Emails)
}

func TestSanitizeIsIdempotent(t *testing.T) {
	emails := batch(3)
	replies := []string{
		`{"summary":"a","emotions":{"Stress":30,"Joy":45},"stressScore":150,"emails":[{"sentiment":"Stress","sentimentScore":-10}]}`,
		`{"summary":"b","emotions":{"Stress":"33.3%","Joy":"33.3%","Calm":"33.3%"},"stressScore":"12.5"}`,
		`{"summary":"c","emotions":{"A":119.6,"B":0.4},"emails":[{},{},{},{}]}`,
		`{"emotions":{"Joy":103}}`,
		"not json at all",
	}

	for _, raw := range replies {
		t.Run(raw, func(t *testing.T) {
			once := analysis.Normalize(raw, emails)
			twice := analysis.Sanitize(once)
			assert.Equal(t, once, twice)
			assert.Equal(t, twice, analysis.Sanitize(twice))
		})
	}
}

func TestSanitizeRepairsHandBuiltResult(t *testing.T) {
	emails := batch(1)
	in := analysis.AnalysisResult{
		Emotions:    analysis.EmotionDistribution{"Stress": 60, "Joy": 60},
		StressScore: 140,
		Emails: []analysis.AnnotatedEmail{
			{EmailSummary: emails[0], Sentiment: "  ", SentimentScore: -3},
		},
	}

	out := analysis.Sanitize(in)

	assert.Equal(t, analysis.DefaultSummary, out.Summary)
	assert.Equal(t, analysis.EmotionDistribution{"Stress": 50, "Joy": 50}, out.Emotions)
	assert.Equal(t, 100, out.StressScore)
	assert.Equal(t, "Neutral", out.Emails[0].Sentiment)
	assert.Equal(t, 0, out.Emails[0].SentimentScore)
}

func TestDecodeResult(t *testing.T) {
	payload := `{
		"summary": "Busy week",
		"emotions": {"Stress": "70%", "Calm": 30},
		"stressScore": "87%",
		"emails": [
			{"id": "1", "subject": "Deadline", "from": "boss@example.com", "date": "2025-03-14T09:30:00Z", "snippet": "due", "sentiment": "Stress", "sentimentScore": "90"},
			{"id": "2", "date": "yesterday"}
		]
	}`

	result, err := analysis.DecodeResult([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, "Busy week", result.Summary)
	assert.Equal(t, analysis.EmotionDistribution{"Stress": 70, "Calm": 30}, result.Emotions)
	assert.Equal(t, 87, result.StressScore)
	require.Len(t, result.Emails, 2)

	first := result.Emails[0]
	assert.Equal(t, "Deadline", first.Subject)
	require.NotNil(t, first.SentAt)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), first.SentAt.UTC())
	assert.Equal(t, 90, first.SentimentScore)

	second := result.Emails[1]
	assert.Equal(t, analysis.DefaultSubject, second.Subject)
	assert.Equal(t, analysis.DefaultSender, second.Sender)
	assert.Nil(t, second.SentAt)
	assert.Equal(t, "Neutral", second.Sentiment)
	assert.Equal(t, 50, second.SentimentScore)
}

func TestDecodeResultRejectsNonObjects(t *testing.T) {
	for _, payload := range []string{`[]`, `null`, `"text"`, `{`} {
		_, err := analysis.DecodeResult([]byte(payload))
		assert.Error(t, err, payload)
	}
}

func TestResultJSONShape(t *testing.T) {
	sent := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	result := analysis.AnalysisResult{
		Summary:     "s",
		Emotions:    analysis.EmotionDistribution{"Stress": 40, "Joy": 60},
		StressScore: 45,
		Emails: []analysis.AnnotatedEmail{{
			EmailSummary:   analysis.NewEmailSummary("1", "Hi", "a@b.c", &sent, "hello"),
			Sentiment:      "Joy",
			SentimentScore: 20,
		}},
	}

	b, err := json.Marshal(result)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"summary": "s",
		"emotions": {"Joy": 60, "Stress": 40},
		"stressScore": 45,
		"emails": [{
			"id": "1", "subject": "Hi", "from": "a@b.c", "date": "2025-03-14T09:30:00Z",
			"snippet": "hello", "sentiment": "Joy", "sentimentScore": 20
		}]
	}`, string(b))
	assert.Contains(t, string(b), `"emotions":{"Joy":60,"Stress":40}`)
}
