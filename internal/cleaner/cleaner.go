// Package cleaner canonicalizes raw email text before boundary patterns are
// tried, and provides the body helpers shared by every detector.
package cleaner

import (
	"regexp"
	"strings"
	"sync"
)

// DefaultCacheSize is the number of normalized texts kept before the memo
// cache is cleared.
const DefaultCacheSize = 200

var (
	trailingNBSP = regexp.MustCompile(`\x{00A0}(\r*(?:\n|\z))`)
	crlf         = regexp.MustCompile(`\r+\n`)
)

// Normalizer strips whitespace noise (BOM, non-breaking spaces, CRLF) and
// memoizes the result per distinct input.
type Normalizer struct {
	mu         sync.Mutex
	cache      map[string]string
	maxEntries int
}

// NewNormalizer creates a normalizer whose cache is cleared once it holds
// more than maxEntries texts. A non-positive maxEntries disables caching.
func NewNormalizer(maxEntries int) *Normalizer {
	return &Normalizer{
		cache:      make(map[string]string),
		maxEntries: maxEntries,
	}
}

var (
	defaultOnce       sync.Once
	defaultNormalizer *Normalizer
)

// Default returns the process-wide normalizer.
func Default() *Normalizer {
	defaultOnce.Do(func() {
		defaultNormalizer = NewNormalizer(DefaultCacheSize)
	})
	return defaultNormalizer
}

// Normalize returns text with BOMs removed, non-breaking spaces dropped at
// line ends and turned into plain spaces elsewhere, line endings folded to
// LF, and surrounding whitespace trimmed. Normalize(Normalize(s)) equals
// Normalize(s).
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	if n.maxEntries > 0 {
		n.mu.Lock()
		cached, ok := n.cache[text]
		n.mu.Unlock()
		if ok {
			return cached
		}
	}

	normalized := strings.ReplaceAll(text, "\uFEFF", "")
	normalized = trailingNBSP.ReplaceAllString(normalized, "${1}")
	normalized = strings.ReplaceAll(normalized, "\u00A0", " ")
	normalized = crlf.ReplaceAllString(normalized, "\n")
	normalized = strings.TrimSpace(normalized)

	if n.maxEntries > 0 {
		n.mu.Lock()
		if len(n.cache) > n.maxEntries {
			clear(n.cache)
		}
		n.cache[text] = normalized
		n.mu.Unlock()
	}

	return normalized
}

// Len returns the number of memoized texts.
func (n *Normalizer) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.cache)
}

// StripQuotes removes the leading '>' run (and one following space) from
// every line, then one leading four-space Outlook indentation.
func StripQuotes(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if trimmed := strings.TrimLeft(line, ">"); len(trimmed) < len(line) {
			line = strings.TrimPrefix(trimmed, " ")
		}
		lines[i] = strings.TrimPrefix(line, "    ")
	}
	return strings.Join(lines, "\n")
}

// ExtractBody returns everything after the header block ending at
// lastHeaderIndex, skipping the blank lines that separate it from the body.
func ExtractBody(lines []string, lastHeaderIndex int) string {
	start := lastHeaderIndex + 1
	if start < 0 {
		start = 0
	}
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}
