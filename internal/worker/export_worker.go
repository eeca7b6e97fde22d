package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"mybalance/internal/amqp"
	"mybalance/internal/core"
	"mybalance/internal/ledger"
	"mybalance/internal/sheets"
)

// ExportWorker mirrors the balance history from the ledger to a sheet.
type ExportWorker struct {
	history ledger.HistoryStore
	mirror  sheets.Mirror
}

func NewExportWorker(history ledger.HistoryStore, mirror sheets.Mirror) *ExportWorker {
	return &ExportWorker{history: history, mirror: mirror}
}

// HandleMessage processes a balance recomputed message from AMQP. The
// message only signals a change; the history is always read from the store
// so late or duplicate deliveries export the current state.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.BalanceRecomputedMessage) error {
	slog.InfoContext(ctx, "Processing balance message",
		"message_id", msg.ID,
		"records", msg.Records,
		"latest_date", msg.LatestDate)

	if _, err := w.Sync(ctx); err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	return nil
}

// Sync exports the stored history when the mirror differs from it. It
// reports whether an export happened.
func (w *ExportWorker) Sync(ctx context.Context) (bool, error) {
	records, err := w.history.ListBalanceHistory(ctx)
	if err != nil {
		return false, fmt.Errorf("list history: %w", err)
	}

	mirrored, err := w.mirror.ReadHistory(ctx)
	if err != nil {
		// an unreadable mirror is rewritten from scratch
		slog.WarnContext(ctx, "Failed to read mirrored history, exporting anyway", "error", err)
	} else if slices.Equal(records, mirrored) {
		slog.DebugContext(ctx, "Mirrored history is current", "records", len(records))
		return false, nil
	}

	if err := w.mirror.ExportHistory(ctx, records); err != nil {
		return false, err
	}

	latest := core.Latest(records)
	slog.InfoContext(ctx, "Balance history mirrored",
		"records", len(records),
		"latest_date", latest.Date.String(),
		"balance", latest.Balance.String())
	return true, nil
}

// StartupSyncCheck brings the mirror up to date when the worker starts, in
// case messages were missed while it was down.
func (w *ExportWorker) StartupSyncCheck(ctx context.Context) error {
	exported, err := w.Sync(ctx)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "exported", exported)
	return nil
}

// RunPeriodic calls Sync every interval until ctx is done. It is the backup
// path for lost AMQP messages.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Sync(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}
