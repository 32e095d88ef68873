package core

import (
	"context"
)

// Detector implements one boundary-recognition heuristic
type Detector interface {
	// Name identifies the detector in results and diagnostics
	Name() string

	// Priority breaks ties between results at the same position; lower wins
	Priority() int

	// Detect looks for an embedded message in text. It never fails: absence
	// of a match is reported as a result with Found set to false.
	Detect(text string) DetectionResult
}

// BoundaryDetector arbitrates between several detectors for one input
type BoundaryDetector interface {
	Detect(text string) DetectionResult
	DetectorNames() []string
}

// TextPreparer bounds and sanitizes untrusted input before detection
type TextPreparer interface {
	ProcessText(text string, maxSize int) string
}

// CacheRepository defines the interface for caching detection results
type CacheRepository interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
