package memory

import (
	"context"
	"testing"

	"mybalance/internal/core"
)

func TestMemoryMirrorExportAndRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	rows, err := s.ReadHistory(ctx)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected empty mirror: rows=%v err=%v", rows, err)
	}

	records := []core.BalanceRecord{{Date: core.NewDate(2025, 1, 1), Balance: core.Money{Cents: 123}}}
	if err := s.ExportHistory(ctx, records); err != nil {
		t.Fatalf("export: %v", err)
	}
	records[0].Balance.Cents = 0 // caller mutation must not leak in

	rows, _ = s.ReadHistory(ctx)
	if len(rows) != 1 || rows[0].Balance.Cents != 123 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if s.Exports() != 1 {
		t.Fatalf("expected 1 export, got %d", s.Exports())
	}
}
