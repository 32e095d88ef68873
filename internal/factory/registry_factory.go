package factory

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/cleaner"
	"github.com/mikey/forward-filter/internal/config"
	"github.com/mikey/forward-filter/internal/detectors"
)

// RegistryFactory builds the detector registry from configuration
type RegistryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRegistryFactory creates a new registry factory
func NewRegistryFactory(cfg *config.Config, logger *zap.Logger) *RegistryFactory {
	return &RegistryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRegistry registers the configured built-in detectors, sharing one
// normalizer sized by detection.normalizer_cache_size
func (f *RegistryFactory) CreateRegistry() (*detectors.Registry, error) {
	detection := f.cfg.GetDetection()
	normalizer := cleaner.NewNormalizer(detection.NormalizerCacheSize)

	names := detection.Detectors
	if len(names) == 0 {
		names = detectors.BuiltinNames()
	}

	registry := detectors.NewEmptyRegistry()
	for _, name := range names {
		name = strings.TrimSpace(name)
		d, ok := detectors.NewBuiltin(name, normalizer)
		if !ok {
			return nil, fmt.Errorf("unknown detector: %s (available: %s)", name, strings.Join(detectors.BuiltinNames(), ", "))
		}
		registry.Register(d)
	}

	f.logger.Debug("Detector registry ready", zap.Strings("detectors", registry.DetectorNames()))
	return registry, nil
}
