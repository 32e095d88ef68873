package detectors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/forward-filter/internal/cleaner"
	"github.com/mikey/forward-filter/internal/core"
)

func newTestReplyDetector() *ReplyDetector {
	return NewReplyDetector(cleaner.NewNormalizer(cleaner.DefaultCacheSize))
}

func TestReplyDetectorIdentity(t *testing.T) {
	d := newTestReplyDetector()
	assert.Equal(t, "reply", d.Name())
	assert.Equal(t, 150, d.Priority())
}

func TestReplyDetectorSimpleReply(t *testing.T) {
	result := newTestReplyDetector().Detect("Hello\nOn Jan 1, 2024, Jane Doe <jane@x.com> wrote:\nBody text")

	require.True(t, result.Found)
	require.NotNil(t, result.Email)
	assert.Equal(t, "Hello", result.Message)
	assert.Equal(t, core.Sender{Name: "Jane Doe", Address: "jane@x.com"}, result.Email.From)
	assert.Equal(t, "Jan 1, 2024", result.Email.Date)
	assert.Equal(t, "Body text", result.Email.Body)
	assert.Equal(t, core.ConfidenceMedium, result.Confidence)
	assert.Empty(t, result.Detector, "detectors never name themselves")
}

func TestReplyDetectorNoMarker(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t",
		"Hi Bob,\n\nSee you tomorrow.\n\nCheers",
		"On second thought, let's meet at noon.",
	}

	d := newTestReplyDetector()
	for _, input := range inputs {
		result := d.Detect(input)
		assert.False(t, result.Found, "input %q", input)
		assert.Nil(t, result.Email)
		assert.Equal(t, core.ConfidenceLow, result.Confidence)
	}
}

func TestReplyDetectorTwoLineHeader(t *testing.T) {
	text := "Intro\nOn Jan 1, 2024,\nJane Doe <jane@x.com> wrote:\n\nBody line\nsecond"

	result := newTestReplyDetector().Detect(text)

	require.True(t, result.Found)
	assert.Equal(t, "Intro", result.Message)
	assert.Equal(t, "Jane Doe", result.Email.From.Name)
	assert.Equal(t, "jane@x.com", result.Email.From.Address)
	assert.Equal(t, "Jan 1, 2024", result.Email.Date)
	// header ends on the second physical line
	assert.Equal(t, "Body line\nsecond", result.Email.Body)
}

func TestReplyDetectorQuotedTwoLineHeader(t *testing.T) {
	tests := []string{
		"Reply\n> On Jan 1, 2024,\n> Jane Doe <jane@x.com> wrote:\n> body line",
		"Reply\n> On Jan 1, 2024,\n> > Jane Doe <jane@x.com> wrote:\n> body line",
	}

	for _, text := range tests {
		result := newTestReplyDetector().Detect(text)

		require.True(t, result.Found, "input %q", text)
		assert.Equal(t, "Reply", result.Message)
		assert.Equal(t, core.Sender{Name: "Jane Doe", Address: "jane@x.com"}, result.Email.From)
		assert.Equal(t, "Jan 1, 2024", result.Email.Date)
		assert.Equal(t, "body line", result.Email.Body)
	}
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "Jane", unquote("  > >>  Jane "))
	assert.Equal(t, "plain", unquote("plain"))
	assert.Empty(t, unquote(">>"))
}

func TestReplyDetectorQuotedHeaderStripsBody(t *testing.T) {
	text := "Reply text\n> On Jan 1, 2024, Jane Doe <jane@x.com> wrote:\n> first line\n>     indented\n>\n>> nested"

	result := newTestReplyDetector().Detect(text)

	require.True(t, result.Found)
	assert.Equal(t, "Reply text", result.Message)
	assert.Equal(t, "first line\nindented\n\nnested", result.Email.Body)
}

func TestReplyDetectorUnquotedHeaderKeepsBody(t *testing.T) {
	text := "On Jan 1, 2024, Jane Doe <jane@x.com> wrote:\n> quoted body\n    indented"

	result := newTestReplyDetector().Detect(text)

	require.True(t, result.Found)
	assert.Empty(t, result.Message)
	assert.Equal(t, "> quoted body\n    indented", result.Email.Body)
}

func TestReplyDetectorLineWindow(t *testing.T) {
	tests := []struct {
		name       string
		markerLine int
		found      bool
	}{
		{name: "29th line", markerLine: 28, found: true},
		{name: "30th line", markerLine: 29, found: true},
		{name: "31st line", markerLine: 30, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := make([]string, 0, tt.markerLine+2)
			for i := 0; i < tt.markerLine; i++ {
				lines = append(lines, fmt.Sprintf("filler %d", i))
			}
			lines = append(lines, "On Jan 1, 2024, Jane Doe <jane@x.com> wrote:", "Body")

			result := newTestReplyDetector().Detect(strings.Join(lines, "\n"))

			assert.Equal(t, tt.found, result.Found)
			if tt.found {
				assert.Equal(t, "Body", result.Email.Body)
				assert.Equal(t, strings.Join(lines[:tt.markerLine], "\n"), result.Message)
			}
		})
	}
}

func TestReplyDetectorLocales(t *testing.T) {
	tests := []struct {
		name   string
		header string
		from   core.Sender
		date   string
	}{
		{
			name:   "english with time",
			header: "On Mon, Jan 1, 2024 at 10:00 AM, Jane Doe <jane@x.com> wrote:",
			from:   core.Sender{Name: "Jane Doe", Address: "jane@x.com"},
			date:   "Mon, Jan 1, 2024 10:00 AM",
		},
		{
			name:   "english quoted name",
			header: `On 1/1/2024, "Doe, Jane" <jane@x.com> wrote:`,
			from:   core.Sender{Name: "Doe, Jane", Address: "jane@x.com"},
			date:   "1/1/2024",
		},
		{
			name:   "french",
			header: "Le 1 janv. 2024 à 10:00, Jean Dupont <jean@exemple.fr> a écrit :",
			from:   core.Sender{Name: "Jean Dupont", Address: "jean@exemple.fr"},
			date:   "1 janv. 2024 à 10:00",
		},
		{
			name:   "german",
			header: `Am 01.01.2024 um 10:00 schrieb "Max Mustermann" <max@beispiel.de>:`,
			from:   core.Sender{Name: "Max Mustermann", Address: "max@beispiel.de"},
			date:   "01.01.2024 um 10:00",
		},
		{
			name:   "dutch",
			header: "Op 1 jan. 2024 heeft Jan Jansen <jan@voorbeeld.nl> geschreven:",
			from:   core.Sender{Name: "Jan Jansen", Address: "jan@voorbeeld.nl"},
			date:   "1 jan. 2024",
		},
		{
			name:   "spanish",
			header: `El 1 ene 2024, "Ana García" <ana@ejemplo.es> escribió:`,
			from:   core.Sender{Name: "Ana García", Address: "ana@ejemplo.es"},
			date:   "1 ene 2024",
		},
		{
			name:   "portuguese",
			header: `Em 1 de jan. de 2024, "João Silva" <joao@exemplo.pt> escreveu:`,
			from:   core.Sender{Name: "João Silva", Address: "joao@exemplo.pt"},
			date:   "1 de jan. de 2024",
		},
		{
			name:   "italian",
			header: `Il giorno 1 gen 2024 "Mario Rossi" <mario@esempio.it> ha scritto:`,
			from:   core.Sender{Name: "Mario Rossi", Address: "mario@esempio.it"},
			date:   "1 gen 2024",
		},
		{
			name:   "address only",
			header: "On Jan 1, 2024, jane@x.com wrote:",
			from:   core.Sender{Address: "jane@x.com"},
			date:   "Jan 1, 2024",
		},
	}

	d := newTestReplyDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.Detect("Top\n" + tt.header + "\nOriginal body")

			require.True(t, result.Found)
			assert.Equal(t, "Top", result.Message)
			assert.Equal(t, tt.from, result.Email.From)
			assert.Equal(t, tt.date, result.Email.Date)
			assert.Equal(t, "Original body", result.Email.Body)
		})
	}
}

func TestReplyDetectorNormalizesInput(t *testing.T) {
	text := "\uFEFFHello\r\nOn Jan 1, 2024, Jane\u00A0Doe <jane@x.com> wrote:\u00A0\r\nBody text\r\n"

	result := newTestReplyDetector().Detect(text)

	require.True(t, result.Found)
	assert.Equal(t, "Hello", result.Message)
	assert.Equal(t, "Jane Doe", result.Email.From.Name)
	assert.Equal(t, "Body text", result.Email.Body)
}

func TestReplyDetectorLongLine(t *testing.T) {
	text := "On " + strings.Repeat("a, ", 20000) + " wrote"

	result := newTestReplyDetector().Detect(text)

	assert.False(t, result.Found)
}
