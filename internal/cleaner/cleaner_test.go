package cleaner

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "crlf folded",
			input:    "line one\r\nline two\r\n",
			expected: "line one\nline two",
		},
		{
			name:     "repeated carriage returns folded",
			input:    "a\r\r\nb",
			expected: "a\nb",
		},
		{
			name:     "byte order mark removed",
			input:    "\uFEFFHello\uFEFF world",
			expected: "Hello world",
		},
		{
			name:     "trailing nbsp dropped",
			input:    "Hello\u00A0\nworld",
			expected: "Hello\nworld",
		},
		{
			name:     "trailing nbsp before crlf dropped",
			input:    "Hello\u00A0\r\nworld",
			expected: "Hello\nworld",
		},
		{
			name:     "interior nbsp becomes space",
			input:    "On\u00A0Monday",
			expected: "On Monday",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "\n\n   body  \n\t",
			expected: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(DefaultCacheSize)
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"\r\uFEFF\nnext",
		"\r\u00A0\nnext",
		"a\r\r\r\nb",
		"\u00A0\u00A0x\u00A0\u00A0",
		"\uFEFF\u00A0\r\n",
		"> quoted\u00A0\r\n>\u00A0\r\n> more",
		"tab\t\u00A0\r",
	}

	n := NewNormalizer(0)
	for _, input := range inputs {
		once := n.Normalize(input)
		assert.Equal(t, once, n.Normalize(once), "input %q", input)
	}
}

func TestNormalizeCacheClearsPastLimit(t *testing.T) {
	n := NewNormalizer(3)

	for i := 0; i < 4; i++ {
		n.Normalize(fmt.Sprintf("text %d", i))
	}
	require.Equal(t, 4, n.Len())

	n.Normalize("text 4")
	assert.Equal(t, 1, n.Len())

	// cached results are returned unchanged
	assert.Equal(t, "text 4", n.Normalize("text 4"))
	assert.Equal(t, 1, n.Len())
}

func TestNormalizeWithoutCache(t *testing.T) {
	n := NewNormalizer(0)
	assert.Equal(t, "x", n.Normalize(" x "))
	assert.Equal(t, 0, n.Len())
}

func TestNormalizeConcurrent(t *testing.T) {
	n := NewNormalizer(10)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				input := fmt.Sprintf("  worker %d line %d\r\n", i, j%20)
				assert.Equal(t, fmt.Sprintf("worker %d line %d", i, j%20), n.Normalize(input))
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, n.Len(), 11)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single quote marker with space",
			input:    "> hello\n> world",
			expected: "hello\nworld",
		},
		{
			name:     "nested markers",
			input:    ">> deep\n>>> deeper",
			expected: "deep\ndeeper",
		},
		{
			name:     "empty quote lines",
			input:    "> a\n>\n> b",
			expected: "a\n\nb",
		},
		{
			name:     "outlook indentation",
			input:    "    indented\n        twice",
			expected: "indented\n    twice",
		},
		{
			name:     "quote then indentation",
			input:    ">     code",
			expected: "code",
		},
		{
			name:     "unquoted text untouched",
			input:    "plain\n  two spaces",
			expected: "plain\n  two spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripQuotes(tt.input))
		})
	}
}

func TestExtractBody(t *testing.T) {
	lines := strings.Split("header\n\n\nfirst\n\nsecond\n", "\n")

	assert.Equal(t, "first\n\nsecond", ExtractBody(lines, 0))
	assert.Equal(t, "second", ExtractBody(lines, 3))
	assert.Equal(t, "", ExtractBody(lines, 5))
	assert.Equal(t, "", ExtractBody(lines, 10))
	assert.Equal(t, "header\n\n\nfirst\n\nsecond", ExtractBody(lines, -1))
}
