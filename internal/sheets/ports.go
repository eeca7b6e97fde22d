package sheets

import (
	"context"

	"mybalance/internal/core"
)

// Ports for outbound adapters.
type (
	// HistoryExporter mirrors the balance history to an external sheet.
	HistoryExporter interface {
		// ExportHistory replaces the exported rows with records.
		ExportHistory(ctx context.Context, records []core.BalanceRecord) error
	}

	// HistoryReader reads back what was last exported.
	HistoryReader interface {
		ReadHistory(ctx context.Context) ([]core.BalanceRecord, error)
	}

	// Mirror is an export target that can be compared before writing.
	Mirror interface {
		HistoryExporter
		HistoryReader
	}
)
