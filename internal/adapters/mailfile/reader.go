// Package mailfile reads RFC 5322 message files (.eml) into email summaries
// for offline analysis.
package mailfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/analysis"
	"github.com/mikey/inbox-therapist/internal/utils"
)

// Extension is the file suffix picked up when a directory is given
const Extension = ".eml"

// Reader turns message files into analysis.EmailSummary records
type Reader struct {
	textProcessor  *utils.TextProcessor
	maxSnippetSize int
	logger         *zap.Logger
}

// NewReader creates a new message file reader
func NewReader(textProcessor *utils.TextProcessor, maxSnippetSize int, logger *zap.Logger) *Reader {
	return &Reader{
		textProcessor:  textProcessor,
		maxSnippetSize: maxSnippetSize,
		logger:         logger,
	}
}

// ReadPaths reads every file named, expanding directories to their .eml
// files in name order. "-" reads a single message from stdin.
func (r *Reader) ReadPaths(ctx context.Context, paths []string) ([]analysis.EmailSummary, error) {
	var emails []analysis.EmailSummary
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if path == "-" {
			email, err := r.Read(os.Stdin, "stdin")
			if err != nil {
				return nil, err
			}
			emails = append(emails, email)
			continue
		}

		files, err := expand(path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			email, err := r.ReadFile(file)
			if err != nil {
				return nil, err
			}
			emails = append(emails, email)
		}
	}
	return emails, nil
}

// ReadFile reads a single message file
func (r *Reader) ReadFile(path string) (analysis.EmailSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return analysis.EmailSummary{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	email, err := r.Read(f, strings.TrimSuffix(filepath.Base(path), Extension))
	if err != nil {
		return analysis.EmailSummary{}, fmt.Errorf("%s: %w", path, err)
	}
	return email, nil
}

// Read parses one message. fallbackID is used when there is no Message-Id.
func (r *Reader) Read(rd io.Reader, fallbackID string) (analysis.EmailSummary, error) {
	mr, err := mail.CreateReader(rd)
	if err != nil && !message.IsUnknownCharset(err) {
		return analysis.EmailSummary{}, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	id, _ := mr.Header.MessageID()
	if id == "" {
		id = fallbackID
	}
	subject, _ := mr.Header.Subject()
	from, _ := mr.Header.Text("From")

	var sentAt *time.Time
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		date = date.UTC()
		sentAt = &date
	}

	body, err := r.extractText(mr)
	if err != nil {
		return analysis.EmailSummary{}, err
	}

	return analysis.NewEmailSummary(id, subject, from, sentAt, r.textProcessor.ProcessText(body, r.maxSnippetSize)), nil
}

// extractText prefers text/plain parts and falls back to HTML rendered as
// markdown. Attachments are skipped.
func (r *Reader) extractText(mr *mail.Reader) (string, error) {
	var plain, html strings.Builder

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				r.logger.Debug("Unknown charset in message part", zap.Error(err))
				continue
			}
			if plain.Len() > 0 || html.Len() > 0 {
				r.logger.Warn("Stopped reading malformed message", zap.Error(err))
				break
			}
			return "", fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()

		switch ct {
		case "text/plain", "":
			if _, err := io.Copy(&plain, part.Body); err != nil {
				return "", fmt.Errorf("failed to read text part: %w", err)
			}
			plain.WriteString("\n")
		case "text/html":
			if _, err := io.Copy(&html, part.Body); err != nil {
				return "", fmt.Errorf("failed to read html part: %w", err)
			}
		}
	}

	if plain.Len() > 0 {
		return plain.String(), nil
	}
	if html.Len() == 0 {
		return "", nil
	}

	md, err := htmltomarkdown.ConvertString(html.String())
	if err != nil {
		r.logger.Warn("Failed to convert HTML body", zap.Error(err))
		return html.String(), nil
	}
	return md, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
