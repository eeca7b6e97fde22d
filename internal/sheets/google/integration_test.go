//go:build integration

package google

import (
	"context"
	"os"
	"testing"

	"mybalance/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ExportAndReadBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := NewFromEnv(ctx)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	records := []core.BalanceRecord{
		{Date: core.NewDate(2024, 1, 1), Income: core.Money{Cents: 10000}, Expense: core.Money{Cents: 3000}, Balance: core.Money{Cents: 7000}},
		{Date: core.NewDate(2024, 1, 2), Income: core.Money{Cents: 5000}, Balance: core.Money{Cents: 12000}},
	}
	if err := client.ExportHistory(ctx, records); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	got, err := client.ReadHistory(ctx)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}
