package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"mybalance/internal/backend"
	"mybalance/internal/balance"
	"mybalance/internal/cli"
	"mybalance/internal/log"
	"mybalance/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting balance-worker")

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	result, backendCfg := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	// A memory store starts without a derived history
	if backendCfg.Type == backend.MemoryBackend {
		if _, err := balance.NewEngine(result.Store, logger).Recompute(ctx); err != nil {
			logger.Error("Initial recompute failed", log.FieldError, err)
			os.Exit(1)
		}
	}

	mirror, err := backend.NewFactory(logger.Logger).CreateMirror(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize sheets mirror", log.FieldError, err)
		os.Exit(1)
	}

	exporter := worker.NewExportWorker(result.Store, mirror)

	logger.Info("Performing startup sync check...")
	if err := exporter.StartupSyncCheck(ctx); err != nil {
		// not fatal, the periodic export retries
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if result.AMQP != nil {
		g.Go(func() error {
			return result.AMQP.ConsumeBalanceRecomputed(gctx, exporter.HandleMessage)
		})
	} else {
		logger.Info("Skipping AMQP message consumption - messaging disabled")
	}
	g.Go(func() error {
		return exporter.RunPeriodic(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
