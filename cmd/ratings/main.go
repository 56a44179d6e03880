package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/league-rating/internal/app"
	"github.com/riskibarqy/league-rating/internal/config"
	"github.com/riskibarqy/league-rating/internal/observability"
	"github.com/riskibarqy/league-rating/internal/platform/logging"
	"github.com/riskibarqy/league-rating/internal/platform/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: build logger: %v\n", err)
		return 1
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitUptrace(cfg, logger)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces failed", "error", err)
		}
	}()

	cli := app.NewCLI(cfg, logger, metrics.NewManager(), app.PostgresOpener(cfg, logger))
	return cli.Run(ctx, os.Args, os.Stdout, os.Stderr)
}
