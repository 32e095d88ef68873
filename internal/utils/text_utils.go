package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/detectors"
)

// DefaultMaxLineBytes is the RFC 5322 line length limit
const DefaultMaxLineBytes = 998

// cappedLines covers the detectors' search window plus the line joined to
// its last entry.
const cappedLines = detectors.MaxSearchLines + 1

// TextProcessor prepares untrusted message text before it reaches the detectors
type TextProcessor struct {
	logger       *zap.Logger
	maxLineBytes int
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger:       logger,
		maxLineBytes: DefaultMaxLineBytes,
	}
}

// SetMaxLineBytes changes the per-line cap applied by CapLines; zero or
// less disables it
func (tp *TextProcessor) SetMaxLineBytes(n int) {
	tp.maxLineBytes = n
}

// TruncateText cuts text to at most maxSize bytes without splitting a UTF-8
// sequence. When possible the cut is moved back to the last line break so
// that no partial header line reaches the detectors.
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := cutUTF8(text, maxSize)
	if idx := strings.LastIndexByte(truncated, '\n'); idx > 0 {
		truncated = truncated[:idx]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// CapLines shortens over-long lines inside the detectors' search window.
// Matching cost grows with line length, so a single huge line would
// otherwise stall detection. Lines past the window are left alone.
func (tp *TextProcessor) CapLines(text string) string {
	if tp.maxLineBytes <= 0 || len(text) <= tp.maxLineBytes {
		return text
	}

	lines := strings.SplitN(text, "\n", cappedLines+1)
	capped := 0
	for i := 0; i < len(lines) && i < cappedLines; i++ {
		if len(lines[i]) > tp.maxLineBytes {
			lines[i] = cutUTF8(lines[i], tp.maxLineBytes)
			capped++
		}
	}
	if capped == 0 {
		return text
	}

	tp.logger.Debug("Long lines capped",
		zap.Int("capped_lines", capped),
		zap.Int("max_line_bytes", tp.maxLineBytes))

	return strings.Join(lines, "\n")
}

// ProcessText sanitizes, truncates and caps line length in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.CapLines(tp.TruncateText(tp.SanitizeUTF8(text), maxSize))
}

// cutUTF8 cuts s to at most n bytes without splitting a rune
func cutUTF8(s string, n int) string {
	cut := s[:n]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
