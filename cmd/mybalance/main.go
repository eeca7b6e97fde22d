package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"mybalance/internal/balance"
	"mybalance/internal/cli"
	apphttp "mybalance/internal/http"
	"mybalance/internal/log"
)

func main() {
	cfg, logger := cli.Bootstrap()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	result, backendCfg := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	engine := balance.NewEngine(result.Store, logger)
	srv := apphttp.NewServer(apphttp.Options{
		Addr:              ":" + cfg.Port,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		AllowedOrigin:     cfg.AllowedOrigin,
		CacheTTL:          cfg.CacheTTL,
		TrustedProxies:    cfg.TrustedProxies,
		Logger:            logger,
	}, result.Store, engine, result.Notifier())

	// The stored history may predate the last shutdown or a seed import
	if _, err := srv.Transactions().Recompute(ctx); err != nil {
		logger.Error("Startup recompute failed", log.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting mybalance server",
			"port", cfg.Port,
			"backend", backendCfg.Type.String(),
			"amqp", result.AMQP != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
