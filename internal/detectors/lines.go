package detectors

import (
	"strings"

	"github.com/mikey/forward-filter/internal/cleaner"
)

// MaxSearchLines bounds how deep into a text a boundary is looked for.
// Headers further down are not treated as forwarding boundaries.
const MaxSearchLines = 30

// splitLines normalizes text and splits it into physical lines. It returns
// nil when nothing is left after normalization.
func splitLines(n *cleaner.Normalizer, text string) []string {
	normalized := n.Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, "\n")
}

func searchLimit(lines []string) int {
	return min(len(lines), MaxSearchLines)
}

// messageBefore returns the text preceding the boundary at line index i.
func messageBefore(lines []string, i int) string {
	if i <= 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[:i], "\n"))
}

// unquote trims line and drops every leading quote marker, so that "> > x"
// becomes "x".
func unquote(line string) string {
	line = strings.TrimSpace(line)
	for strings.HasPrefix(line, ">") {
		line = strings.TrimSpace(line[1:])
	}
	return line
}

func isQuoted(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), ">")
}

// bodyAfter extracts the embedded body following a header that ends at
// lastHeader, undoing quoting when the boundary line itself was quoted.
func bodyAfter(lines []string, lastHeader int, boundary string) string {
	body := cleaner.ExtractBody(lines, lastHeader)
	if isQuoted(boundary) {
		body = strings.Trim(cleaner.StripQuotes(body), "\n")
	}
	return body
}

func orDefault(n *cleaner.Normalizer) *cleaner.Normalizer {
	if n == nil {
		return cleaner.Default()
	}
	return n
}
