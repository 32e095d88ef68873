package di

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/adapters/filter"
	"github.com/mikey/forward-filter/internal/config"
	"github.com/mikey/forward-filter/internal/core"
	"github.com/mikey/forward-filter/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Detection flags
	Detectors       string
	InternalDomains string
	MaxInputBytes   int

	// Input flags
	InputFile string
	Format    string

	// Output flags
	JSON       bool
	List       bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string

	// explicit records the flags given on the command line
	explicit map[string]bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("forward-detector", flag.ContinueOnError)
	fs.SetOutput(output)

	// Detection flags
	fs.StringVar(&flags.Detectors, "detectors", "", "Comma-separated detectors to run (default: all)")
	fs.StringVar(&flags.InternalDomains, "internal-domains", "", "Comma-separated domains treated as internal senders")
	fs.IntVar(&flags.MaxInputBytes, "max-input-bytes", 1<<20, "Maximum body size analyzed, in bytes")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "Input file (use stdin if not specified)")
	fs.StringVar(&flags.Format, "format", filter.FormatText, "Input format (text, mime, mbox)")

	// Output flags
	fs.BoolVar(&flags.JSON, "json", false, "Print results as JSON, one object per message")
	fs.BoolVar(&flags.List, "list", false, "List detectors in priority order and exit")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging and print extracted text")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file; detection flags given explicitly still override it")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	flags.explicit = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { flags.explicit[f.Name] = true })

	switch flags.Format {
	case filter.FormatText, filter.FormatMIME, filter.FormatMbox:
	default:
		return nil, fmt.Errorf("unsupported input format: %s", flags.Format)
	}

	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			applyDetectionFlags(cfg, flags, true)
			// the CLI always reports to stdout
			applyOutputFlags(cfg, flags)
			return cfg, nil
		}

		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// No cache for a one-shot run
	if err := container.Provide(func() core.CacheRepository { return nil }); err != nil {
		return nil, err
	}

	if err := provideDetection(container, func() cacheSettings { return cacheSettings{} }); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.GetViper().Set("cache.enabled", false)

	applyDetectionFlags(cfg, flags, false)
	applyOutputFlags(cfg, flags)
	return cfg
}

// applyDetectionFlags copies the detection flags into cfg. With
// explicitOnly, only flags given on the command line are applied so that
// file settings survive.
func applyDetectionFlags(cfg *config.Config, flags *CLIFlags, explicitOnly bool) {
	v := cfg.GetViper()
	use := func(name string) bool { return !explicitOnly || flags.explicit[name] }

	if names := splitList(flags.Detectors); len(names) > 0 && use("detectors") {
		v.Set("detection.detectors", names)
	}
	if use("internal-domains") {
		v.Set("detection.internal_domains", splitList(flags.InternalDomains))
	}
	if use("max-input-bytes") {
		v.Set("detection.max_input_bytes", flags.MaxInputBytes)
	}
}

func applyOutputFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cli.json", flags.JSON)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
