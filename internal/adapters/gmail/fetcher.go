// Package gmail fetches message metadata from the Gmail REST API.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/mail"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/core"
)

const gmailUserID = "me"

// Fetcher implements core.MailFetcher on top of the Gmail API. It holds no
// credentials: every call builds a service from the caller's access token.
type Fetcher struct {
	logger *zap.Logger
	opts   []option.ClientOption
}

// NewFetcher creates a new Gmail fetcher. Extra client options are appended
// after the per-request token source.
func NewFetcher(logger *zap.Logger, opts ...option.ClientOption) *Fetcher {
	return &Fetcher{
		logger: logger,
		opts:   opts,
	}
}

// FetchEmails lists the most recent messages matching the query and loads
// their metadata in list order
func (f *Fetcher) FetchEmails(ctx context.Context, token string, query core.FetchQuery) ([]analysis.EmailSummary, error) {
	svc, err := f.newSvc(ctx, token)
	if err != nil {
		return nil, err
	}

	call := svc.Users.Messages.List(gmailUserID).MaxResults(int64(query.Count))
	if q := searchQuery(query.TimeRange); q != "" {
		call = call.Q(q)
	}

	list, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", classify(err))
	}

	emails := make([]analysis.EmailSummary, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get(gmailUserID, ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "Date").
			Context(ctx).
			Do()
		if err != nil {
			if errors.Is(classify(err), core.ErrUnauthorized) || ctx.Err() != nil {
				return nil, fmt.Errorf("messages.Get failed: %w", classify(err))
			}
			f.logger.Warn("Skipping message that could not be loaded",
				zap.String("message_id", ref.Id),
				zap.Error(err))
			continue
		}
		emails = append(emails, toSummary(msg))
	}

	return emails, nil
}

func (f *Fetcher) newSvc(ctx context.Context, token string) (*gmail.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, f.opts...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}
	return svc, nil
}

func searchQuery(tr core.TimeRange) string {
	switch tr {
	case core.TimeRangeWeek:
		return "newer_than:7d"
	case core.TimeRangeMonth:
		return "newer_than:30d"
	default:
		return ""
	}
}

// classify maps an expired or revoked token onto core.ErrUnauthorized
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", core.ErrUnauthorized, err)
	}
	return err
}

func toSummary(msg *gmail.Message) analysis.EmailSummary {
	var subject, from, date string
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				subject = h.Value
			case "From":
				from = h.Value
			case "Date":
				date = h.Value
			}
		}
	}

	return analysis.NewEmailSummary(msg.Id, subject, from, sentAt(date, msg.InternalDate), html.UnescapeString(msg.Snippet))
}

// sentAt prefers the Date header and falls back to Gmail's internal timestamp
func sentAt(header string, internalDate int64) *time.Time {
	if header != "" {
		if t, err := mail.ParseDate(header); err == nil {
			t = t.UTC()
			return &t
		}
	}
	if internalDate > 0 {
		t := time.UnixMilli(internalDate).UTC()
		return &t
	}
	return nil
}
