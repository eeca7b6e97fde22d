// Command recalculate rebuilds the balance history once and exits.
//
// A running server caches balance reads, so it serves the rebuilt history
// once its CACHE_TTL has passed. POST /balance/recalculate takes effect at
// once.
package main

import (
	"os"

	"mybalance/internal/balance"
	"mybalance/internal/cli"
	"mybalance/internal/core"
	"mybalance/internal/log"
	"mybalance/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	result, _ := cli.InitBackend(ctx, logger, cfg)

	engine := balance.NewEngine(result.Store, logger)
	svc := services.NewTransactionService(result.Store, engine, result.Notifier())

	records, err := svc.Recompute(ctx)
	if cerr := result.Cleanup(); cerr != nil {
		logger.Error("Backend cleanup failed", log.FieldError, cerr)
	}
	if err != nil {
		logger.Error("Recompute failed", log.FieldError, err)
		os.Exit(1)
	}

	latest := core.Latest(records)
	logger.Info("Balance history recalculated",
		log.FieldRecords, len(records),
		log.FieldDate, latest.Date.String(),
		log.FieldBalanceCents, latest.Balance.Cents)
}
