package ports

import (
	"context"

	"github.com/mikey/forward-filter/internal/core"
)

// EmailFilter defines the interface for the outer surfaces that feed mail
// into detection
type EmailFilter interface {
	// ProcessText runs detection over one plain-text body
	ProcessText(ctx context.Context, text string) (*core.DetectionResult, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
