package detectors

import (
	"regexp"
	"strings"

	"github.com/mikey/forward-filter/internal/cleaner"
	"github.com/mikey/forward-filter/internal/core"
)

const (
	ReplyName     = "reply"
	ReplyPriority = 150
)

// replyPatterns matches "On <date>, <name> wrote:" and its localized forms.
// Earlier entries win when a line matches several.
var replyPatterns = compileAll(
	// cs
	`^\s*>?\s*Dne\s+(?P<date>.+),\s+(?P<from_name>.+)\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+napsal\(a\)\s*:`,
	// da
	`^\s*>?\s*D.\s+(?P<date>.+)\s+skrev\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]? ?: ?`,
	// de
	`^\s*>?\s*Am\s+(?P<date>.+)\s+schrieb\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]? ?: ?`,
	// en
	`^\s*>?\s*On\s+(?P<date>.+),\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+wrote ?: ?`,
	`^\s*>?\s*On\s+(?P<date>.+)\s+at\s+(?P<time>.+),\s+(?P<from_name>.+)\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+wrote ?: ?`,
	`^\s*>?\s*On\s+(?P<date>.+),\s+(?P<from_name>.+)\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+wrote ?: ?`,
	`^\s*>?\s*On\s+(?P<date>.+)\s+(?P<from_name>.+)\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+wrote ?: ?`,
	// es
	`^\s*>?\s*El\s+(?P<date>.+),\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+escribió ?: ?`,
	// fr
	`^\s*>?\s*Le\s+(?P<date>.+),\s+[«"]?(?P<from_name>.+)[»"]?\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+a écrit ?: ?`,
	// fi
	`^\s*>?\s*(?P<from_name>.+)\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+kirjoitti\s+(?P<date>.+) ?: ?`,
	// hu
	`^\s*>?\s*(?P<date>.+)\s+időpontban\s+(?P<from_name>.+)\s*[\[|<|(]?(?P<from_address>.+)?[\]|>|)]?\s+ezt írta ?: ?`,
	// it
	`^\s*>?\s*Il giorno\s+(?P<date>.+)\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+ha scritto ?: ?`,
	// nl
	`^\s*>?\s*Op\s+(?P<date>.+)\s+heeft\s+(?P<from_name>.+)\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+geschreven ?: ?`,
	// no
	`^\s*>?\s*(?P<from_name>.+)\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+skrev følgende den\s+(?P<date>.+) ?: ?`,
	// pl
	`^\s*>?\s*Dnia\s+(?P<date>.+)\s+[„"]?(?P<from_name>.+)[”"]?\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+napisał ?: ?`,
	// pt
	`^\s*>?\s*Em\s+(?P<date>.+),\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+escreveu ?: ?`,
	// ru
	`^\s*>?\s*(?P<date>.+)\s+пользователь\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+написал ?: ?`,
	// sk
	`^\s*>?\s*(?P<date>.+)\s+používateľ\s+(?P<from_name>.+)\s*\([\[|<]?(?P<from_address>.+)?[\]|>]\)?\s+napísal ?: ?`,
	// sv
	`^\s*>?\s*Den\s+(?P<date>.+)\s+skrev\s+"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]?\s+följande ?: ?`,
	// tr
	`^\s*>?\s*"(?P<from_name>.+)"\s*[\[|<]?(?P<from_address>.+)?[\]|>]?,\s+(?P<date>.+)\s+tarihinde şunu yazdı ?: ?`,
)

// compileAll compiles case-insensitive, line-anchored patterns. Go's regexp
// runs in time linear in the input, so none of these can blow up on
// hostile text.
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?mi)` + p)
	}
	return compiled
}

// ReplyDetector recognizes reply attribution lines such as
// "On Jan 1, 2024, Jane Doe <jane@example.com> wrote:", including ones
// wrapped over two physical lines.
type ReplyDetector struct {
	normalizer *cleaner.Normalizer
	patterns   []*regexp.Regexp
}

// NewReplyDetector creates a reply detector. A nil normalizer selects the
// process-wide one.
func NewReplyDetector(n *cleaner.Normalizer) *ReplyDetector {
	return &ReplyDetector{
		normalizer: orDefault(n),
		patterns:   replyPatterns,
	}
}

func (d *ReplyDetector) Name() string  { return ReplyName }
func (d *ReplyDetector) Priority() int { return ReplyPriority }

// Detect implements core.Detector
func (d *ReplyDetector) Detect(text string) core.DetectionResult {
	lines := splitLines(d.normalizer, text)

	for i := 0; i < searchLimit(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		next := ""
		if i+1 < len(lines) {
			next = unquote(lines[i+1])
		}
		combined := strings.TrimSpace(line + " " + next)

		for _, pattern := range d.patterns {
			lastHeader := i
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				match = pattern.FindStringSubmatch(combined)
				lastHeader = i + 1
			}
			if match == nil {
				continue
			}

			date := group(pattern, match, "date")
			if t := group(pattern, match, "time"); t != "" {
				date = date + " " + t
			}

			return core.DetectionResult{
				Found: true,
				Email: &core.Email{
					From: parseSender(group(pattern, match, "from_name"), group(pattern, match, "from_address")),
					Date: strings.TrimSpace(date),
					Body: bodyAfter(lines, lastHeader, line),
				},
				Message:    messageBefore(lines, i),
				Confidence: core.ConfidenceMedium,
			}
		}
	}

	return core.NotFound()
}

// group returns a named capture, or "" when the group did not participate.
func group(re *regexp.Regexp, match []string, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(match) {
		return ""
	}
	return strings.TrimSpace(match[idx])
}
