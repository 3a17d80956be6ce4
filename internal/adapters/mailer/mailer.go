// Package mailer delivers analysis reports over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/config"
	"github.com/mikey/inbox-therapist/internal/dashboard"
)

// ErrInvalidRecipient is returned for an empty or malformed To address
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Mailer sends share reports through an SMTP relay
type Mailer struct {
	cfg      config.ReportConfig
	logger   *zap.Logger
	hostname string
	now      func() time.Time
}

// NewMailer creates a new report mailer
func NewMailer(cfg config.ReportConfig, logger *zap.Logger) *Mailer {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Mailer{
		cfg:      cfg,
		logger:   logger,
		hostname: hostname,
		now:      time.Now,
	}
}

// Enabled reports whether sharing by email is switched on
func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled
}

// SendReport mails the share text of a result to a single recipient
func (m *Mailer) SendReport(ctx context.Context, to string, result analysis.AnalysisResult) error {
	rcpt, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	msg, err := m.Compose(rcpt, result)
	if err != nil {
		return err
	}

	if err := m.deliver(ctx, rcpt.Address, msg); err != nil {
		return err
	}

	m.logger.Info("Report sent",
		zap.String("to", rcpt.Address),
		zap.Int("size", len(msg)))
	return nil
}

// Compose renders the report as a plain-text RFC 5322 message
func (m *Mailer) Compose(to *mail.Address, result analysis.AnalysisResult) ([]byte, error) {
	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{{Name: "Inbox Therapist", Address: m.cfg.From}})
	h.SetAddressList("To", []*mail.Address{to})
	h.SetSubject(m.cfg.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := io.WriteString(w, reportBody(result)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message writer: %w", err)
	}

	return buf.Bytes(), nil
}

func reportBody(result analysis.AnalysisResult) string {
	var b strings.Builder
	b.WriteString(dashboard.ShareText(result))
	b.WriteString("\n\nRecommendations:\n")
	for _, rec := range dashboard.Recommendations(result.Emotions) {
		b.WriteString("- ")
		b.WriteString(rec)
		b.WriteString("\n")
	}
	return b.String()
}

// deliver runs one SMTP transaction against the configured relay
func (m *Mailer) deliver(ctx context.Context, rcpt string, msg []byte) error {
	dialer := net.Dialer{Timeout: m.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.cfg.SMTPAddress)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay: %w", err)
	}

	deadline := m.now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(m.hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(m.cfg.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(rcpt, nil); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// already accepted by the relay
		m.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}
