package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/config"
	"github.com/mikey/forward-filter/internal/utils"
)

// TextProcessorFactory creates text processors
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor capped by
// detection.max_line_bytes
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	tp := utils.NewTextProcessor(f.logger)
	tp.SetMaxLineBytes(f.cfg.GetDetection().MaxLineBytes)
	return tp
}
