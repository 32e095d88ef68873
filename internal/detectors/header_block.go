package detectors

import (
	"regexp"
	"strings"

	"github.com/mikey/forward-filter/internal/cleaner"
	"github.com/mikey/forward-filter/internal/core"
)

type headerField int

const (
	fieldFrom headerField = iota
	fieldDate
	fieldSubject
	fieldTo
	fieldCc
)

// "Key: value" with optional quote marker, *bold* markers and a space before
// the colon as French clients write it.
var headerLine = regexp.MustCompile(`^\s*(?:>+\s*)?\**\s*(?P<key>[^:*\n]{1,30}?)\s*\**\s*:\s*\**\s*(?P<value>.*?)\s*$`)

// headerBlock is a run of consecutive recognized header lines.
type headerBlock struct {
	fields  map[headerField]string
	order   []headerField
	wrapped map[headerField]bool
	last    int
}

func (b headerBlock) has(f headerField) bool {
	_, ok := b.fields[f]
	return ok
}

func (b headerBlock) startsWith(f headerField) bool {
	return len(b.order) > 0 && b.order[0] == f
}

func parseHeaderLine(line string, aliases map[string]headerField) (headerField, string, bool) {
	m := headerLine.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	key := strings.ToLower(strings.Join(strings.Fields(m[headerLine.SubexpIndex("key")]), " "))
	f, ok := aliases[key]
	if !ok {
		return 0, "", false
	}
	return f, strings.TrimSpace(m[headerLine.SubexpIndex("value")]), true
}

// readHeaderBlock collects header lines starting at start. The block ends at
// the first blank line, unknown key, or repeated field. With wrapEmpty, an
// empty value is taken from the following line when that line is not a
// header itself.
func readHeaderBlock(lines []string, start int, aliases map[string]headerField, wrapEmpty bool) (headerBlock, bool) {
	block := headerBlock{
		fields:  make(map[headerField]string),
		wrapped: make(map[headerField]bool),
		last:    -1,
	}

	for j := start; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			break
		}
		f, value, ok := parseHeaderLine(lines[j], aliases)
		if !ok || block.has(f) {
			break
		}

		if value == "" && wrapEmpty && j+1 < len(lines) {
			next := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(lines[j+1]), ">"))
			if _, _, isHeader := parseHeaderLine(lines[j+1], aliases); next != "" && !isHeader {
				value = next
				block.wrapped[f] = true
				j++
			}
		}

		block.fields[f] = value
		block.order = append(block.order, f)
		block.last = j
	}

	return block, len(block.order) > 0
}

// blockDetector finds an embedded message introduced by a block of
// localized header lines, optionally preceded by a separator line.
type blockDetector struct {
	name       string
	priority   int
	confidence core.Confidence
	normalizer *cleaner.Normalizer
	separators []*regexp.Regexp
	aliases    map[string]headerField
	wrapEmpty  bool
	accept     func(headerBlock) bool
}

func (d *blockDetector) Name() string  { return d.name }
func (d *blockDetector) Priority() int { return d.priority }

// Detect implements core.Detector
func (d *blockDetector) Detect(text string) core.DetectionResult {
	lines := splitLines(d.normalizer, text)

	for i := 0; i < searchLimit(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		start := i
		if len(d.separators) > 0 {
			if !matchesAny(d.separators, line) {
				continue
			}
			start = i + 1
			for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
				start++
			}
		}

		block, ok := readHeaderBlock(lines, start, d.aliases, d.wrapEmpty)
		if !ok || !d.accept(block) {
			continue
		}

		return core.DetectionResult{
			Found: true,
			Email: &core.Email{
				From:    parseSender(block.fields[fieldFrom], ""),
				Date:    block.fields[fieldDate],
				Subject: block.fields[fieldSubject],
				Body:    bodyAfter(lines, block.last, line),
			},
			Message:    messageBefore(lines, i),
			Confidence: d.confidence,
		}
	}

	return core.NotFound()
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func mergeAliases(tables ...map[string]headerField) map[string]headerField {
	merged := make(map[string]headerField)
	for _, t := range tables {
		for k, v := range t {
			merged[k] = v
		}
	}
	return merged
}
