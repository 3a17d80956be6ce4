// Package dashboard turns an AnalysisResult into the data a dashboard shows:
// ranked emotions, stress gauge, recommendations, a per-day timeline and a
// sortable email table. It produces data only, never markup.
package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/mikey/inbox-therapist/internal/analysis"
)

// View is everything a dashboard needs to render one analysis
type View struct {
	Summary            string      `json:"summary"`
	Emotions           []Emotion   `json:"emotions"`
	Stress             StressGauge `json:"stress"`
	EmotionStressIndex int         `json:"emotionStressIndex"`
	Recommendations    []string    `json:"recommendations"`
	Timeline           Timeline    `json:"timeline"`
	Emails             []EmailRow  `json:"emails"`
	Sort               Options     `json:"sort"`
	ShareText          string      `json:"shareText"`
}

// Emotion is one ranked entry of the distribution
type Emotion struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Class string  `json:"class"`
}

// StressGauge describes the overall stress score
type StressGauge struct {
	Score int    `json:"score"`
	Level string `json:"level"`
	Color string `json:"color"`
}

// EmailRow is one line of the email table
type EmailRow struct {
	analysis.AnnotatedEmail
	Class string `json:"class"`
	Color string `json:"color"`
}

// Build re-validates the result and derives the dashboard from it. The
// result may come from anywhere (a client, a file, the cache), so it is
// passed through analysis.Sanitize first.
func Build(result analysis.AnalysisResult, opts Options) View {
	r := analysis.Sanitize(result)
	opts = opts.normalized()

	shares := r.Emotions.Sorted()
	emotions := make([]Emotion, len(shares))
	for i, s := range shares {
		emotions[i] = Emotion{Label: s.Label, Value: s.Value, Class: EmotionClass(s.Label)}
	}

	rows := make([]EmailRow, len(r.Emails))
	for i, e := range r.Emails {
		rows[i] = EmailRow{
			AnnotatedEmail: e,
			Class:          EmotionClass(e.Sentiment),
			Color:          SentimentColor(e.SentimentScore),
		}
	}
	SortEmails(rows, opts)

	return View{
		Summary:            r.Summary,
		Emotions:           emotions,
		Stress:             Gauge(r.StressScore),
		EmotionStressIndex: analysis.DeriveStressScore(r.Emotions),
		Recommendations:    Recommendations(r.Emotions),
		Timeline:           BuildTimeline(r.Emails),
		Emails:             rows,
		Sort:               opts,
		ShareText:          ShareText(r),
	}
}

// Gauge maps a 0-100 stress score onto a level and colour
func Gauge(score int) StressGauge {
	switch {
	case score <= 30:
		return StressGauge{Score: score, Level: "Low", Color: "#10b981"}
	case score <= 60:
		return StressGauge{Score: score, Level: "Moderate", Color: "#facc15"}
	case score <= 80:
		return StressGauge{Score: score, Level: "High", Color: "#f97316"}
	default:
		return StressGauge{Score: score, Level: "Very High", Color: "#ef4444"}
	}
}

// SentimentColor colours a per-email score from red (low) to green (high)
func SentimentColor(score int) string {
	switch {
	case score < 30:
		return "#ef4444"
	case score < 50:
		return "#f97316"
	case score < 70:
		return "#facc15"
	default:
		return "#10b981"
	}
}

// ShareText is the short plain-text form of an analysis
func ShareText(r analysis.AnalysisResult) string {
	return fmt.Sprintf("My Inbox Therapist Analysis:\n\n%s\n\nStress Score: %d/100", r.Summary, r.StressScore)
}

// Export serializes the sanitized result as indented JSON
func Export(r analysis.AnalysisResult) ([]byte, error) {
	return json.MarshalIndent(analysis.Sanitize(r), "", "  ")
}
