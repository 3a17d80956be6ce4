package analysis

import "strings"

// ReconcileSentiments attaches the model's per-message verdicts to the
// original batch. Matching is strictly positional: claimed[i] annotates
// emails[i]. The result always has len(emails) entries in the original order;
// missing or malformed verdicts get ("Neutral", 50) and surplus ones are ignored.
func ReconcileSentiments(emails []EmailSummary, claimed any) []AnnotatedEmail {
	entries, _ := claimed.([]any)

	out := make([]AnnotatedEmail, len(emails))
	for i, email := range emails {
		var entry map[string]any
		if i < len(entries) {
			entry, _ = entries[i].(map[string]any)
		}
		out[i] = AnnotatedEmail{
			EmailSummary:   email,
			Sentiment:      sentimentOf(entry),
			SentimentScore: ValidateScore(lookup(entry, "sentimentScore", "sentiment_score")),
		}
	}
	return out
}

// DefaultAnnotations returns the batch with every email set to the neutral default.
func DefaultAnnotations(emails []EmailSummary) []AnnotatedEmail {
	return ReconcileSentiments(emails, nil)
}

func sentimentOf(entry map[string]any) string {
	s, ok := lookup(entry, "sentiment").(string)
	if !ok {
		return DefaultSentiment
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSentiment
	}
	return s
}

// lookup returns the first present key. A nil map yields nil.
func lookup(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}
