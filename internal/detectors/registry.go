// Package detectors holds the boundary detectors that locate an embedded
// forward or reply inside email plain-text, and the registry that
// arbitrates between them.
package detectors

import (
	"math"
	"sort"
	"sync"

	"github.com/mikey/forward-filter/internal/cleaner"
	"github.com/mikey/forward-filter/internal/core"
)

var builtins = []struct {
	name string
	new  func(*cleaner.Normalizer) core.Detector
}{
	{ForwardedName, NewForwardedDetector},
	{OutlookEmptyHeaderName, NewOutlookEmptyHeaderDetector},
	{OutlookReverseFRName, NewOutlookReverseFRDetector},
	{ReplyName, func(n *cleaner.Normalizer) core.Detector { return NewReplyDetector(n) }},
	{OutlookFRName, NewOutlookFRDetector},
	{NewOutlookName, NewOutlookDetector},
}

// BuiltinNames lists the built-in detectors in registration order
func BuiltinNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.name
	}
	return names
}

// BuiltinDetectors instantiates every built-in detector
func BuiltinDetectors(n *cleaner.Normalizer) []core.Detector {
	detectors := make([]core.Detector, len(builtins))
	for i, b := range builtins {
		detectors[i] = b.new(n)
	}
	return detectors
}

// NewBuiltin instantiates the built-in detector with the given name
func NewBuiltin(name string, n *cleaner.Normalizer) (core.Detector, bool) {
	for _, b := range builtins {
		if b.name == name {
			return b.new(n), true
		}
	}
	return nil, false
}

// Registry runs a priority-ordered set of detectors and keeps the result
// whose boundary appears earliest in the text.
type Registry struct {
	mu        sync.RWMutex
	detectors []core.Detector
}

// NewRegistry creates a registry holding the built-in detectors followed by
// any custom ones.
func NewRegistry(custom ...core.Detector) *Registry {
	r := NewEmptyRegistry()
	for _, d := range BuiltinDetectors(nil) {
		r.Register(d)
	}
	for _, d := range custom {
		r.Register(d)
	}
	return r
}

// NewEmptyRegistry creates a registry with no detectors
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// Register adds a detector. Detectors are kept sorted by ascending priority;
// equal priorities keep their registration order. Registering the same
// detector twice runs it twice.
func (r *Registry) Register(d core.Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Detect may still be iterating the old slice.
	detectors := make([]core.Detector, len(r.detectors), len(r.detectors)+1)
	copy(detectors, r.detectors)
	detectors = append(detectors, d)
	sort.SliceStable(detectors, func(i, j int) bool {
		return detectors[i].Priority() < detectors[j].Priority()
	})
	r.detectors = detectors
}

// Detect runs every detector over text. Among usable results the one with
// the smallest match index wins; on a tie the higher-priority detector,
// which ran first, keeps it.
func (r *Registry) Detect(text string) core.DetectionResult {
	r.mu.RLock()
	detectors := r.detectors
	r.mu.RUnlock()

	var best *core.DetectionResult
	bestIndex := math.MaxInt

	for _, d := range detectors {
		result := d.Detect(text)
		if !result.Usable() {
			continue
		}
		if idx := result.MatchIndex(); idx < bestIndex {
			bestIndex = idx
			result.Detector = d.Name()
			best = &result
		}
	}

	if best == nil {
		return core.NotFound()
	}
	return *best
}

// DetectorNames returns the registered detector names in priority order
func (r *Registry) DetectorNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		names[i] = d.Name()
	}
	return names
}

// Len returns the number of registered detectors
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.detectors)
}
