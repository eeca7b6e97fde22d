package http

import (
	"strings"

	"mybalance/internal/core"
)

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// BalanceRecordJSON is the wire form of a balance record. Amounts are
// decimal strings.
type BalanceRecordJSON struct {
	Date    string `json:"date"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

func balanceRecordJSON(r core.BalanceRecord) BalanceRecordJSON {
	return BalanceRecordJSON{
		Date:    r.Date.String(),
		Income:  r.Income.String(),
		Expense: r.Expense.String(),
		Balance: r.Balance.String(),
	}
}

func balanceRecordsJSON(records []core.BalanceRecord) []BalanceRecordJSON {
	out := make([]BalanceRecordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, balanceRecordJSON(r))
	}
	return out
}

type TransactionJSON struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	CategoryID  *int64 `json:"category_id"`
}

func transactionJSON(t core.Transaction) TransactionJSON {
	return TransactionJSON{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount.String(),
		Date:        t.Date.String(),
		Kind:        string(t.Kind),
		CategoryID:  t.CategoryID,
	}
}

func transactionsJSON(txs []core.Transaction) []TransactionJSON {
	out := make([]TransactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionJSON(t))
	}
	return out
}

type CategoryJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func categoriesJSON(cats []core.Category) []CategoryJSON {
	out := make([]CategoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryJSON(c))
	}
	return out
}
