// Package console prints analysis dashboards as plain text.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/dashboard"
)

const barWidth = 30

// Printer writes human-readable reports
type Printer struct {
	out     io.Writer
	verbose bool
}

// NewPrinter creates a new console printer
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{
		out:     out,
		verbose: verbose,
	}
}

// PrintBatch summarizes the messages about to be analyzed
func (p *Printer) PrintBatch(emails []analysis.EmailSummary) {
	fmt.Fprintf(p.out, "\n=== Emails ===\n")
	fmt.Fprintf(p.out, "Messages: %d\n", len(emails))
	if !p.verbose {
		return
	}
	for i, e := range emails {
		fmt.Fprintf(p.out, "%2d. %s | %s\n", i+1, e.Sender, e.Subject)
	}
}

// PrintView writes the dashboard sections in display order
func (p *Printer) PrintView(view dashboard.View, model string, duration time.Duration) {
	fmt.Fprintf(p.out, "\n=== Summary ===\n%s\n", view.Summary)

	fmt.Fprintf(p.out, "\n=== Stress ===\n")
	fmt.Fprintf(p.out, "Stress score: %d/100 (%s)\n", view.Stress.Score, view.Stress.Level)
	fmt.Fprintf(p.out, "Emotion stress index: %d/100\n", view.EmotionStressIndex)

	fmt.Fprintf(p.out, "\n=== Emotions ===\n")
	for _, e := range view.Emotions {
		fmt.Fprintf(p.out, "%-14s %5.1f%% %s\n", e.Label, e.Value, bar(e.Value))
	}

	fmt.Fprintf(p.out, "\n=== Recommendations ===\n")
	for _, rec := range view.Recommendations {
		fmt.Fprintf(p.out, "- %s\n", rec)
	}

	if view.Timeline.HasDates {
		fmt.Fprintf(p.out, "\n=== Timeline ===\n")
		for _, pt := range view.Timeline.Points {
			fmt.Fprintf(p.out, "%s  mood %5.1f  (%d emails)\n", pt.Day, pt.Score, pt.Count)
		}
	}

	if len(view.Emails) > 0 {
		fmt.Fprintf(p.out, "\n=== Emails (by %s, %s) ===\n", view.Sort.Field, view.Sort.Direction)
		for _, e := range view.Emails {
			date := "-"
			if e.SentAt != nil {
				date = e.SentAt.Format("2006-01-02")
			}
			fmt.Fprintf(p.out, "%s  %-12s %3d  %s\n", date, e.Sentiment, e.SentimentScore, e.Subject)
		}
	}

	if p.verbose {
		fmt.Fprintf(p.out, "\nModel used: %s\n", model)
		fmt.Fprintf(p.out, "Processing time: %v\n", duration)
	}
}

func bar(pct float64) string {
	n := int(pct / 100 * barWidth)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("#", n)
}
