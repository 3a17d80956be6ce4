// Package senderfilter decides which senders are left out of an analysis batch.
package senderfilter

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses against a list of ignored domains.
// A listed domain also covers its subdomains.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new sender checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(domain), "@")))
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized sender filter", zap.Strings("ignored_domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Domains returns the normalized ignore list
func (c *Checker) Domains() []string {
	return append([]string(nil), c.domains...)
}

// IsIgnored reports whether the sender belongs to an ignored domain. The
// sender may be a bare address or a display-name form such as
// "Jane <jane@example.com>".
func (c *Checker) IsIgnored(from string) bool {
	if c == nil || len(c.domains) == 0 {
		return false
	}

	domain := Domain(from)
	if domain == "" {
		return false
	}

	for _, ignored := range c.domains {
		if domain == ignored || strings.HasSuffix(domain, "."+ignored) {
			if c.logger != nil {
				c.logger.Debug("Sender domain is ignored",
					zap.String("domain", domain),
					zap.String("sender", from))
			}
			return true
		}
	}

	return false
}

// Domain extracts the lower-cased domain of a sender, or "" when there is none
func Domain(from string) string {
	address := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(address); err == nil {
		address = parsed.Address
	}

	at := strings.LastIndexByte(address, '@')
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(strings.Trim(address[at+1:], "<> "))
}
