package dashboard

import (
	"sort"

	"github.com/mikey/inbox-therapist/internal/analysis"
)

const dayLayout = "2006-01-02"

// Timeline is the per-day mood series of a batch
type Timeline struct {
	HasDates bool       `json:"hasDates"`
	Points   []DayPoint `json:"points"`
}

// DayPoint is one calendar day (UTC) of the timeline. Score maps the mean
// sentiment weight from [-1, 1] onto [0, 100].
type DayPoint struct {
	Day   string  `json:"day"`
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// SentimentWeight scores a sentiment word on a -1 (negative) to 1 (positive) scale
func SentimentWeight(sentiment string) float64 {
	l := fold(sentiment)
	switch {
	case containsAny(l, "stress", "anxiety"):
		return -0.7
	case containsAny(l, "joy", "happy"):
		return 0.8
	case containsAny(l, "neutral"):
		return 0
	case containsAny(l, "calm"):
		return 0.5
	case containsAny(l, "frustration"):
		return -0.5
	default:
		return 0
	}
}

// BuildTimeline groups dated emails by day. Undated emails are skipped.
func BuildTimeline(emails []analysis.AnnotatedEmail) Timeline {
	type bucket struct {
		sum    float64
		scored int
		count  int
	}
	buckets := make(map[string]*bucket)

	for _, e := range emails {
		if e.SentAt == nil {
			continue
		}
		day := e.SentAt.UTC().Format(dayLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.count++
		if e.Sentiment != "" {
			b.sum += SentimentWeight(e.Sentiment)
			b.scored++
		}
	}

	if len(buckets) == 0 {
		return Timeline{Points: []DayPoint{}}
	}

	points := make([]DayPoint, 0, len(buckets))
	for day, b := range buckets {
		var avg float64
		if b.scored > 0 {
			avg = b.sum / float64(b.scored)
		}
		points = append(points, DayPoint{Day: day, Score: (avg + 1) * 50, Count: b.count})
	}
	// ISO dates sort chronologically as strings
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })

	return Timeline{HasDates: true, Points: points}
}
