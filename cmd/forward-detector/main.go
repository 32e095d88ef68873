package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/forward-filter/internal/adapters/filter"
	"github.com/mikey/forward-filter/internal/core"
	"github.com/mikey/forward-filter/internal/di"
	"github.com/mikey/forward-filter/internal/ports"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.DetectionService,
	emailFilter ports.EmailFilter,
) error {
	defer logger.Sync()

	if flags.List {
		for _, name := range service.DetectorNames() {
			fmt.Println(name)
		}
		return nil
	}

	cli, ok := emailFilter.(*filter.CliFilter)
	if !ok {
		return fmt.Errorf("configured filter is not the CLI filter")
	}

	var input io.Reader = os.Stdin
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		input = file
		logger.Info("Reading input from file", zap.String("file", flags.InputFile), zap.String("format", flags.Format))
	} else {
		logger.Info("Reading input from stdin", zap.String("format", flags.Format))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, input, flags.Format)
}
