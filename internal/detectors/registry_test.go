package detectors

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/forward-filter/internal/core"
)

type stubDetector struct {
	name     string
	priority int
	result   core.DetectionResult
}

func (s *stubDetector) Name() string                       { return s.name }
func (s *stubDetector) Priority() int                      { return s.priority }
func (s *stubDetector) Detect(string) core.DetectionResult { return s.result }

func matchAt(message, address string) core.DetectionResult {
	return core.DetectionResult{
		Found:      true,
		Email:      &core.Email{From: core.Sender{Address: address}, Body: "body"},
		Message:    message,
		Confidence: core.ConfidenceMedium,
	}
}

func TestRegistryEarliestBoundaryWins(t *testing.T) {
	r := NewEmptyRegistry()
	r.Register(&stubDetector{name: "preferred", priority: 1, result: matchAt("a much longer preamble", "late@x.com")})
	r.Register(&stubDetector{name: "fallback", priority: 100, result: matchAt("short", "early@x.com")})

	result := r.Detect("ignored")

	require.True(t, result.Found)
	assert.Equal(t, "fallback", result.Detector)
	assert.Equal(t, "early@x.com", result.Email.From.Address)
}

func TestRegistryTieGoesToHigherPriority(t *testing.T) {
	r := NewEmptyRegistry()
	r.Register(&stubDetector{name: "low", priority: 50, result: matchAt("same", "low@x.com")})
	r.Register(&stubDetector{name: "high", priority: 2, result: matchAt("same", "high@x.com")})

	result := r.Detect("ignored")

	assert.Equal(t, "high", result.Detector)
	assert.Equal(t, "high@x.com", result.Email.From.Address)
}

func TestRegistryEqualPriorityKeepsRegistrationOrder(t *testing.T) {
	r := NewEmptyRegistry()
	for _, name := range []string{"first", "second", "third"} {
		r.Register(&stubDetector{name: name, priority: 10, result: matchAt("", name+"@x.com")})
	}

	assert.Equal(t, []string{"first", "second", "third"}, r.DetectorNames())
	assert.Equal(t, "first", r.Detect("ignored").Detector)
}

func TestRegistryDiscardsMatchesWithoutSender(t *testing.T) {
	tests := []struct {
		name   string
		result core.DetectionResult
	}{
		{
			name: "empty sender",
			result: core.DetectionResult{
				Found: true,
				Email: &core.Email{Body: "body"},
			},
		},
		{
			name: "whitespace sender",
			result: core.DetectionResult{
				Found: true,
				Email: &core.Email{From: core.Sender{Name: "  ", Address: "\t"}},
			},
		},
		{
			name:   "found without email",
			result: core.DetectionResult{Found: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewEmptyRegistry()
			r.Register(&stubDetector{name: "shape-only", priority: 0, result: tt.result})

			result := r.Detect("ignored")

			assert.False(t, result.Found)
			assert.Equal(t, core.ConfidenceLow, result.Confidence)
			assert.Empty(t, result.Detector)
		})
	}
}

func TestRegistryUnusableMatchDoesNotShadowLaterOne(t *testing.T) {
	r := NewEmptyRegistry()
	r.Register(&stubDetector{name: "empty", priority: 0, result: core.DetectionResult{
		Found: true,
		Email: &core.Email{},
	}})
	r.Register(&stubDetector{name: "named", priority: 1, result: core.DetectionResult{
		Found:   true,
		Email:   &core.Email{From: core.Sender{Name: "Jane"}},
		Message: "later",
	}})

	result := r.Detect("ignored")

	assert.Equal(t, "named", result.Detector)
}

func TestRegistryAllowsDuplicates(t *testing.T) {
	d := &stubDetector{name: "dup", priority: 3, result: core.NotFound()}
	r := NewEmptyRegistry()
	r.Register(d)
	r.Register(d)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"dup", "dup"}, r.DetectorNames())
	assert.False(t, r.Detect("anything").Found)
}

func TestNewRegistryBuiltinOrder(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{
		"forwarded",
		"outlook-empty-header",
		"outlook-reverse-fr",
		"outlook-fr",
		"new-outlook",
		"reply",
	}, r.DetectorNames())
}

func TestNewRegistryCustomDetector(t *testing.T) {
	custom := &stubDetector{name: "custom", priority: 7, result: core.NotFound()}
	r := NewRegistry(custom)

	assert.Equal(t, 7, r.Len())
	assert.Equal(t, "custom", r.DetectorNames()[3])
}

func TestRegistryDetectsReply(t *testing.T) {
	result := NewRegistry().Detect("Hello\nOn Jan 1, 2024, Jane Doe <jane@x.com> wrote:\nBody text")

	require.True(t, result.Found)
	assert.Equal(t, "reply", result.Detector)
	assert.Equal(t, "Hello", result.Message)
	assert.Equal(t, core.Sender{Name: "Jane Doe", Address: "jane@x.com"}, result.Email.From)
	assert.Equal(t, "Body text", result.Email.Body)
}

func TestRegistryNothingToFind(t *testing.T) {
	result := NewRegistry().Detect("Just a short note.\n\nThanks")

	assert.False(t, result.Found)
	assert.Nil(t, result.Email)
	assert.Equal(t, core.ConfidenceLow, result.Confidence)
}

func TestRegistryPrefersEarlierForwardOverLaterReply(t *testing.T) {
	text := "Thanks!\n\n" +
		"---------- Forwarded message ---------\n" +
		"From: Jane Doe <jane@x.com>\n" +
		"Date: Mon, Jan 1, 2024\n" +
		"Subject: Hi\n" +
		"To: bob@y.com\n\n" +
		"On Dec 31, 2023, Bob <bob@y.com> wrote:\n" +
		"old"

	result := NewRegistry().Detect(text)

	require.True(t, result.Found)
	assert.Equal(t, "forwarded", result.Detector)
	assert.Equal(t, "Thanks!", result.Message)
	assert.Equal(t, "Hi", result.Email.Subject)
	assert.Equal(t, "On Dec 31, 2023, Bob <bob@y.com> wrote:\nold", result.Email.Body)
}

func TestRegistryPrefersEarlierReplyOverLaterForward(t *testing.T) {
	text := "Intro\n" +
		"On Jan 1, 2024, Jane Doe <jane@x.com> wrote:\n" +
		"> -----Original Message-----\n" +
		"> From: Bob <bob@y.com>\n" +
		"> Sent: Sunday, December 31, 2023\n" +
		"> Subject: x\n" +
		">\n" +
		"> old"

	result := NewRegistry().Detect(text)

	require.True(t, result.Found)
	assert.Equal(t, "reply", result.Detector)
	assert.Equal(t, "jane@x.com", result.Email.From.Address)
}

func TestRegistryConcurrentDetect(t *testing.T) {
	r := NewRegistry()
	text := "Hello\nOn Jan 1, 2024, Jane Doe <jane@x.com> wrote:\nBody text"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, "reply", r.Detect(text).Detector)
			}
		}()
	}
	r.Register(&stubDetector{name: "late", priority: 200, result: core.NotFound()})
	wg.Wait()
}
