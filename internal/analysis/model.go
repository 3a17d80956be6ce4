// Package analysis turns free-form language-model replies into a canonical
// AnalysisResult. Everything in this package is pure: no I/O, no logging,
// no shared mutable state.
package analysis

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

const (
	// DefaultSubject is used when a message has no Subject header.
	DefaultSubject = "No Subject"
	// DefaultSender is used when a message has no From header.
	DefaultSender = "Unknown Sender"
	// DefaultSentiment is assigned to emails the model did not annotate.
	DefaultSentiment = "Neutral"
	// DefaultScore is the neutral midpoint for stress and sentiment scores.
	DefaultScore = 50
	// DefaultSummary is used when the model reply carries no usable summary.
	DefaultSummary = "No summary was provided for these emails."

	// FallbackSummary is returned whenever the model reply cannot be parsed.
	FallbackSummary = "We couldn't analyze your emails at this time. Please try again later."
	// EmptySummary is returned when there is nothing to analyze.
	EmptySummary = "No emails were found for the selected time range."

	// NeutralLabel is the single label of a collapsed distribution.
	NeutralLabel = "Neutral"
)

// EmailSummary is the minimal per-message record sent to the model.
type EmailSummary struct {
	ID      string     `json:"id"`
	Subject string     `json:"subject"`
	Sender  string     `json:"from"`
	SentAt  *time.Time `json:"date,omitempty"`
	Snippet string     `json:"snippet"`
}

// NewEmailSummary builds a summary with the subject and sender defaults applied.
func NewEmailSummary(id, subject, sender string, sentAt *time.Time, snippet string) EmailSummary {
	if subject == "" {
		subject = DefaultSubject
	}
	if sender == "" {
		sender = DefaultSender
	}
	return EmailSummary{
		ID:      id,
		Subject: subject,
		Sender:  sender,
		SentAt:  sentAt,
		Snippet: snippet,
	}
}

// AnnotatedEmail is an EmailSummary with the model's per-message verdict.
type AnnotatedEmail struct {
	EmailSummary
	Sentiment      string `json:"sentiment"`
	SentimentScore int    `json:"sentimentScore"`
}

// AnalysisResult is the canonical, validated output of one analysis run.
type AnalysisResult struct {
	Summary     string              `json:"summary"`
	Emotions    EmotionDistribution `json:"emotions"`
	StressScore int                 `json:"stressScore"`
	Emails      []AnnotatedEmail    `json:"emails"`
}

// EmotionShare is one label of a distribution together with its percentage.
type EmotionShare struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// EmotionDistribution maps free-form emotion labels to percentages.
type EmotionDistribution map[string]float64

// Sorted returns the entries highest value first. Ties are broken by label so
// the order is deterministic.
func (d EmotionDistribution) Sorted() []EmotionShare {
	shares := make([]EmotionShare, 0, len(d))
	for label, value := range d {
		shares = append(shares, EmotionShare{Label: label, Value: value})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Label < shares[j].Label
	})
	return shares
}

// Dominant returns the highest-valued entry, or a zero share for an empty distribution.
func (d EmotionDistribution) Dominant() (EmotionShare, bool) {
	sorted := d.Sorted()
	if len(sorted) == 0 {
		return EmotionShare{}, false
	}
	return sorted[0], true
}

// Sum adds up all values.
func (d EmotionDistribution) Sum() float64 {
	var sum float64
	for _, v := range d {
		sum += v
	}
	return sum
}

// MarshalJSON writes the object with keys ordered highest value first, so that
// consumers iterating the object in document order see the ranked distribution.
func (d EmotionDistribution) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, share := range d.Sorted() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(share.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(share.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
