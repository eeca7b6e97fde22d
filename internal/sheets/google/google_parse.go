package google

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mybalance/internal/core"
)

// parseHistory converts a values matrix (as returned by the Sheets API)
// back into balance records. The first row must be the header written by
// ExportHistory; blank rows are skipped.
func parseHistory(values [][]interface{}) ([]core.BalanceRecord, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	if len(headers) < len(headerRow) || !strings.EqualFold(headers[0], "Date") {
		return nil, fmt.Errorf("unexpected header row %v", headers)
	}

	records := make([]core.BalanceRecord, 0, len(values)-1)
	for i, row := range values[1:] {
		cells := toStrings(row)
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		if len(cells) < 4 {
			return nil, fmt.Errorf("row %d: expected 4 cells, got %d", i+2, len(cells))
		}
		date, err := core.ParseDate(cells[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		var amounts [3]int64
		for j := range amounts {
			cents, err := parseCents(cells[j+1])
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+2, j+2, err)
			}
			amounts[j] = cents
		}
		records = append(records, core.BalanceRecord{
			Date:    date,
			Income:  core.Money{Cents: amounts[0]},
			Expense: core.Money{Cents: amounts[1]},
			Balance: core.Money{Cents: amounts[2]},
		})
	}
	return records, nil
}

// parseCents accepts signed decimal cells such as "120.00", "-5.5" or "1,5".
func parseCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.Round(2).Shift(2).IntPart(), nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
