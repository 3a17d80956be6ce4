package core

import (
	"time"

	"github.com/mikey/inbox-therapist/internal/analysis"
)

// TimeRange selects how far back a mailbox batch reaches
type TimeRange string

const (
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeAll   TimeRange = "all"
)

// ParseTimeRange accepts the wire values of TimeRange; anything else reports false
func ParseTimeRange(s string) (TimeRange, bool) {
	switch TimeRange(s) {
	case TimeRangeWeek, TimeRangeMonth, TimeRangeAll:
		return TimeRange(s), true
	default:
		return "", false
	}
}

// FetchQuery describes which messages a MailFetcher should return
type FetchQuery struct {
	Count     int
	TimeRange TimeRange
}

// AnalysisRequest is a single "analyze my inbox" request
type AnalysisRequest struct {
	Token     string
	Count     int
	TimeRange string
}

// CacheEntry is a stored analysis keyed by the batch it was computed for
type CacheEntry struct {
	Key       string
	Result    analysis.AnalysisResult
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at the given time
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
