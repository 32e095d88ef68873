package factory

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/adapters/filter"
	"github.com/mikey/forward-filter/internal/config"
	"github.com/mikey/forward-filter/internal/core"
	"github.com/mikey/forward-filter/internal/domains"
	"github.com/mikey/forward-filter/internal/ports"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	service  *core.DetectionService
	internal *domains.Checker
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.DetectionService, internal *domains.Checker) *FilterFactory {
	return &FilterFactory{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		internal: internal,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	server := f.cfg.GetServer()

	switch server.FilterType {
	case "postfix":
		return filter.NewPostfixFilter(f.service, f.logger, f.internal, server), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.internal,
			os.Stdout,
			f.cfg.GetBool("cli.verbose"),
			f.cfg.GetBool("cli.json"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", server.FilterType)
	}
}
