package dashboard

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort fields of the email table
const (
	SortByDate           = "date"
	SortBySubject        = "subject"
	SortBySentiment      = "sentiment"
	SortBySentimentScore = "sentimentScore"

	Ascending  = "asc"
	Descending = "desc"
)

// Options selects the email table order. Zero values mean newest first.
type Options struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

func (o Options) normalized() Options {
	switch o.Field {
	case SortByDate, SortBySubject, SortBySentiment, SortBySentimentScore:
	default:
		o.Field = SortByDate
	}
	if o.Direction != Ascending {
		o.Direction = Descending
	}
	return o
}

// SortEmails orders rows in place. Rows missing the sort value go last in
// either direction and keep their relative order.
func SortEmails(rows []EmailRow, opts Options) {
	opts = opts.normalized()
	desc := opts.Direction == Descending

	missing := func(EmailRow) bool { return false }
	var cmp func(a, b EmailRow) int
	switch opts.Field {
	case SortBySubject:
		c := collate.New(language.English, collate.IgnoreCase)
		cmp = func(a, b EmailRow) int { return c.CompareString(a.Subject, b.Subject) }
	case SortBySentiment:
		c := collate.New(language.English, collate.IgnoreCase)
		missing = func(r EmailRow) bool { return r.Sentiment == "" }
		cmp = func(a, b EmailRow) int { return c.CompareString(a.Sentiment, b.Sentiment) }
	case SortBySentimentScore:
		cmp = func(a, b EmailRow) int { return a.SentimentScore - b.SentimentScore }
	default:
		missing = func(r EmailRow) bool { return r.SentAt == nil }
		cmp = func(a, b EmailRow) int { return a.SentAt.Compare(*b.SentAt) }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		mi, mj := missing(rows[i]), missing(rows[j])
		if mi || mj {
			return !mi && mj
		}
		if desc {
			return cmp(rows[j], rows[i]) < 0
		}
		return cmp(rows[i], rows[j]) < 0
	})
}
