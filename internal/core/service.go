package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/senderfilter"
	"github.com/mikey/inbox-therapist/internal/utils"
)

// ErrMissingToken is returned when a request carries no access token
var ErrMissingToken = errors.New("token is required")

const loggedReplySize = 200

// Settings holds the tunables of MoodService
type Settings struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	DefaultCount     int
	MaxCount         int
	DefaultTimeRange TimeRange
}

// MoodService is the core service: fetch a batch, ask the model, normalize
type MoodService struct {
	llmClient LLMClient
	fetcher   MailFetcher
	cache     CacheRepository
	filter    *senderfilter.Checker
	logger    *zap.Logger
	settings  Settings
	now       func() time.Time
}

// NewMoodService creates a new mood analysis service. fetcher, cache and
// filter may be nil: the CLI analyzes local files without any of them.
func NewMoodService(
	llmClient LLMClient,
	fetcher MailFetcher,
	cache CacheRepository,
	filter *senderfilter.Checker,
	logger *zap.Logger,
	settings Settings,
) *MoodService {
	if settings.DefaultCount <= 0 {
		settings.DefaultCount = 10
	}
	if settings.MaxCount <= 0 {
		settings.MaxCount = 50
	}
	if _, ok := ParseTimeRange(string(settings.DefaultTimeRange)); !ok {
		settings.DefaultTimeRange = TimeRangeWeek
	}
	if cache == nil {
		settings.CacheEnabled = false
	}

	return &MoodService{
		llmClient: llmClient,
		fetcher:   fetcher,
		cache:     cache,
		filter:    filter,
		logger:    logger,
		settings:  settings,
		now:       time.Now,
	}
}

// Analyze fetches the requested slice of the mailbox and analyzes it
func (s *MoodService) Analyze(ctx context.Context, req AnalysisRequest) (*analysis.AnalysisResult, error) {
	if req.Token == "" {
		return nil, ErrMissingToken
	}
	if s.fetcher == nil {
		return nil, errors.New("no mail fetcher configured")
	}

	query := s.query(req)
	emails, err := s.fetcher.FetchEmails(ctx, req.Token, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch emails: %w", err)
	}

	s.logger.Info("Fetched emails",
		zap.Int("count", len(emails)),
		zap.Int("requested", query.Count),
		zap.String("time_range", string(query.TimeRange)))

	return s.AnalyzeBatch(ctx, s.filterSenders(emails))
}

// AnalyzeBatch analyzes an already assembled batch. Transport failures from
// the model are returned; an unusable reply is not an error and yields the
// fallback result instead.
func (s *MoodService) AnalyzeBatch(ctx context.Context, emails []analysis.EmailSummary) (*analysis.AnalysisResult, error) {
	if len(emails) == 0 {
		result := analysis.EmptyResult()
		return &result, nil
	}

	key := CacheKey(s.llmClient.ModelName(), emails)
	if s.settings.CacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for batch", zap.String("key", key))
			result := analysis.Sanitize(entry.Result)
			return &result, nil
		}
	}

	start := s.now()
	raw, err := s.llmClient.AnalyzeEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze emails: %w", err)
	}

	result, parseErr := analysis.Parse(raw, emails)
	if parseErr != nil {
		s.logger.Warn("Model reply could not be parsed, serving fallback",
			zap.Error(parseErr),
			zap.String("model", s.llmClient.ModelName()),
			zap.Int("reply_size", len(raw)),
			zap.String("fragment", utils.NewTextProcessor(nil).TruncateText(raw, loggedReplySize)))
		return &result, nil
	}

	s.logger.Info("Analyzed emails",
		zap.Int("count", len(emails)),
		zap.Int("stress_score", result.StressScore),
		zap.Duration("duration", s.now().Sub(start)))

	if s.settings.CacheEnabled {
		now := s.now()
		entry := &CacheEntry{
			Key:       key,
			Result:    result,
			CreatedAt: now,
			ExpiresAt: now.Add(s.settings.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return &result, nil
}

func (s *MoodService) query(req AnalysisRequest) FetchQuery {
	count := req.Count
	if count <= 0 {
		count = s.settings.DefaultCount
	}
	if count > s.settings.MaxCount {
		count = s.settings.MaxCount
	}

	timeRange, ok := ParseTimeRange(req.TimeRange)
	if !ok {
		timeRange = s.settings.DefaultTimeRange
	}
	return FetchQuery{Count: count, TimeRange: timeRange}
}

func (s *MoodService) filterSenders(emails []analysis.EmailSummary) []analysis.EmailSummary {
	if s.filter == nil {
		return emails
	}

	kept := make([]analysis.EmailSummary, 0, len(emails))
	for _, email := range emails {
		if s.filter.IsIgnored(email.Sender) {
			s.logger.Debug("Skipping email from ignored sender",
				zap.String("sender", email.Sender),
				zap.String("action", "ignore_sender"))
			continue
		}
		kept = append(kept, email)
	}
	return kept
}

// CacheKey identifies a batch for a given model: same model, same messages in
// the same order, same text.
func CacheKey(model string, emails []analysis.EmailSummary) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, e := range emails {
		h.Write([]byte{0})
		h.Write([]byte(e.ID))
		h.Write([]byte{0})
		h.Write([]byte(e.Snippet))
	}
	return hex.EncodeToString(h.Sum(nil))
}
