package domains

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether an embedded sender belongs to one of the
// organisation's own domains. Subdomains of a listed domain match too.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new internal-domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized internal domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Enabled reports whether any domain is configured
func (c *Checker) Enabled() bool {
	return c != nil && len(c.domains) > 0
}

// IsInternal checks whether address is in one of the configured domains
func (c *Checker) IsInternal(address string) bool {
	if !c.Enabled() {
		return false
	}

	at := strings.LastIndexByte(address, '@')
	if at < 0 || at == len(address)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(address[at+1:]))

	for _, internal := range c.domains {
		if domain == internal || strings.HasSuffix(domain, "."+internal) {
			if c.logger != nil {
				c.logger.Debug("Sender domain is internal",
					zap.String("domain", domain),
					zap.String("email", address))
			}
			return true
		}
	}

	return false
}
