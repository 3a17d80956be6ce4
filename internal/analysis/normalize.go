package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Parse runs the full pipeline on a raw model reply and reports a
// *ParseFailure when no JSON object can be recovered. Everything after
// extraction is sanitized rather than rejected.
func Parse(raw string, emails []EmailSummary) (result AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = Fallback(emails)
			err = &ParseFailure{Kind: ErrInvalidJSON, Err: fmt.Errorf("recovered: %v", r)}
		}
	}()

	obj, err := ExtractJSON(raw)
	if err != nil {
		return Fallback(emails), err
	}
	return fromObject(obj, emails), nil
}

// Normalize is Parse without the error: any failure yields Fallback(emails).
func Normalize(raw string, emails []EmailSummary) AnalysisResult {
	result, _ := Parse(raw, emails)
	return result
}

// Fallback is the result served when the model reply is unusable. Its
// emotion distribution is a fixed constant and is not re-validated.
func Fallback(emails []EmailSummary) AnalysisResult {
	return AnalysisResult{
		Summary: FallbackSummary,
		Emotions: EmotionDistribution{
			"Neutral": 50,
			"Stress":  25,
			"Joy":     25,
		},
		StressScore: DefaultScore,
		Emails:      DefaultAnnotations(emails),
	}
}

// EmptyResult is the result for a batch with no messages in it.
func EmptyResult() AnalysisResult {
	return AnalysisResult{
		Summary:     EmptySummary,
		Emotions:    neutralDistribution(),
		StressScore: DefaultScore,
		Emails:      []AnnotatedEmail{},
	}
}

// Sanitize re-applies the validators to an already typed result. It is
// idempotent on anything Parse produced and is what presentation code calls
// before trusting a result it did not build itself.
func Sanitize(r AnalysisResult) AnalysisResult {
	emails := make([]EmailSummary, len(r.Emails))
	claimed := make([]any, len(r.Emails))
	for i, e := range r.Emails {
		emails[i] = e.EmailSummary
		claimed[i] = map[string]any{
			"sentiment":      e.Sentiment,
			"sentimentScore": float64(e.SentimentScore),
		}
	}

	return AnalysisResult{
		Summary:     summaryOf(r.Summary),
		Emotions:    ValidateEmotions(map[string]float64(r.Emotions)),
		StressScore: ValidateScore(float64(r.StressScore)),
		Emails:      ReconcileSentiments(emails, claimed),
	}
}

// DecodeResult reads a serialized AnalysisResult from an untrusted source and
// sanitizes it with the same validators used on model replies. The emails
// array of the payload is both the batch and the verdict list.
func DecodeResult(data []byte) (AnalysisResult, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	if obj == nil {
		return AnalysisResult{}, fmt.Errorf("failed to decode analysis result: not an object")
	}

	items, _ := obj["emails"].([]any)
	emails := make([]EmailSummary, len(items))
	for i, item := range items {
		emails[i] = summaryFromObject(item)
	}

	result := fromObject(obj, emails)
	return result, nil
}

func fromObject(obj map[string]any, emails []EmailSummary) AnalysisResult {
	summary, _ := obj["summary"].(string)
	return AnalysisResult{
		Summary:     summaryOf(summary),
		Emotions:    ValidateEmotions(obj["emotions"]),
		StressScore: ValidateScore(lookup(obj, "stressScore", "stress_score")),
		Emails:      ReconcileSentiments(emails, lookup(obj, "emails")),
	}
}

func summaryOf(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultSummary
	}
	return s
}

func summaryFromObject(v any) EmailSummary {
	m, _ := v.(map[string]any)
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}

	var sentAt *time.Time
	if raw := str("date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			sentAt = &t
		}
	}
	return NewEmailSummary(str("id"), str("subject"), str("from"), sentAt, str("snippet"))
}
