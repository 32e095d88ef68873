package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/config"
	"github.com/mikey/forward-filter/internal/core"
	"github.com/mikey/forward-filter/internal/detectors"
	"github.com/mikey/forward-filter/internal/domains"
	"github.com/mikey/forward-filter/internal/factory"
	"github.com/mikey/forward-filter/internal/logging"
	"github.com/mikey/forward-filter/internal/ports"
)

// BuildContainer creates and configures a dependency injection container
// for the content-filter daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	if err := provideDetection(container, func(f *factory.CacheFactory) (cacheSettings, error) {
		ttl, err := f.GetCacheTTL()
		return cacheSettings{Enabled: f.IsCacheEnabled(), TTL: ttl}, err
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// cacheSettings carries the cache switches into the detection service
type cacheSettings struct {
	Enabled bool
	TTL     time.Duration
}

// provideDetection registers everything between configuration and the
// email filter. It expects *config.Config, *zap.Logger and
// core.CacheRepository to be provided already.
func provideDetection(container *dig.Container, settings interface{}) error {
	if err := container.Provide(settings); err != nil {
		return err
	}

	// Register detector registry
	if err := container.Provide(factory.NewRegistryFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.RegistryFactory) (*detectors.Registry, error) {
		return f.CreateRegistry()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register internal domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *domains.Checker {
		return domains.NewChecker(cfg.GetDetection().InternalDomains, logger)
	}); err != nil {
		return err
	}

	// Register detection service
	if err := container.Provide(func(
		registry *detectors.Registry,
		cache core.CacheRepository,
		logger *zap.Logger,
		settings cacheSettings,
		tpf *factory.TextProcessorFactory,
		cfg *config.Config,
	) *core.DetectionService {
		return core.NewDetectionService(
			registry,
			cache,
			logger,
			settings.Enabled,
			settings.TTL,
			tpf.CreateTextProcessor(),
			cfg.GetDetection().MaxInputBytes,
		)
	}); err != nil {
		return err
	}

	// Register email filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return err
	}
	return container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	})
}
