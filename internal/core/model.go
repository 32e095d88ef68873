package core

import (
	"strings"
	"time"
)

// Confidence is the heuristic strength of a detection
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Sender identifies the author of an embedded message
type Sender struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// IsEmpty reports whether neither name nor address carries any text
func (s Sender) IsEmpty() bool {
	return strings.TrimSpace(s.Name) == "" && strings.TrimSpace(s.Address) == ""
}

// Email represents the embedded message reconstructed from a boundary
type Email struct {
	From    Sender `json:"from"`
	Date    string `json:"date,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// DetectionResult is the outcome of running a detector over one block of text
type DetectionResult struct {
	Found bool `json:"found"`
	// Detector is filled in by the registry, never by the detector itself.
	Detector   string     `json:"detector,omitempty"`
	Email      *Email     `json:"email,omitempty"`
	Message    string     `json:"message,omitempty"`
	Confidence Confidence `json:"confidence"`
}

// NotFound returns the canonical "no embedded message" result
func NotFound() DetectionResult {
	return DetectionResult{Found: false, Confidence: ConfidenceLow}
}

// Usable reports whether the result matched and identifies a sender
func (r DetectionResult) Usable() bool {
	return r.Found && r.Email != nil && !r.Email.From.IsEmpty()
}

// MatchIndex is the length of the text preceding the detected boundary
func (r DetectionResult) MatchIndex() int {
	return len(r.Message)
}

// CacheEntry is a stored detection result keyed by a digest of the input text
type CacheEntry struct {
	Key       string
	Result    DetectionResult
	CreatedAt time.Time
	ExpiresAt time.Time
}
