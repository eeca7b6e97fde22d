// Package balance derives the per-day balance history from the ledger.
//
// The history is derived state: Recompute rebuilds it from every stored
// transaction and atomically replaces what the store held before.
package balance

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"mybalance/internal/core"
	"mybalance/internal/ledger"
	"mybalance/internal/log"
)

// ErrRecompute wraps any failure while rebuilding the history.
var ErrRecompute = errors.New("balance recompute failed")

// Store is what the engine needs from the ledger.
type Store interface {
	ledger.TransactionReader
	ledger.HistoryStore
}

type Engine struct {
	store  Store
	logger *log.Logger
}

func NewEngine(store Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Engine{store: store, logger: logger.WithComponent(log.ComponentBalance)}
}

type dayTotals struct {
	income  int64
	expense int64
}

// Compute folds transactions into one record per distinct date, ordered by
// date, with the running balance starting from zero.
func Compute(txs []core.Transaction) []core.BalanceRecord {
	if len(txs) == 0 {
		return []core.BalanceRecord{}
	}

	byDate := make(map[core.Date]*dayTotals)
	for _, t := range txs {
		day, ok := byDate[t.Date]
		if !ok {
			day = &dayTotals{}
			byDate[t.Date] = day
		}
		switch t.Kind {
		case core.Income:
			day.income += t.Amount.Cents
		case core.Expense:
			day.expense += t.Amount.Cents
		}
	}

	dates := make([]core.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	records := make([]core.BalanceRecord, 0, len(dates))
	var running int64
	for _, d := range dates {
		day := byDate[d]
		running += day.income - day.expense
		records = append(records, core.BalanceRecord{
			Date:    d,
			Income:  core.Money{Cents: day.income},
			Expense: core.Money{Cents: day.expense},
			Balance: core.Money{Cents: running},
		})
	}
	return records
}

// Recompute rebuilds the whole history from the current transactions. On
// failure the stored history is left as it was.
func (e *Engine) Recompute(ctx context.Context) ([]core.BalanceRecord, error) {
	txs, err := e.store.ListAllTransactions(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to load transactions", log.FieldError, err)
		return nil, fmt.Errorf("%w: load transactions: %w", ErrRecompute, err)
	}

	records := Compute(txs)
	if err := e.store.ReplaceBalanceHistory(ctx, records); err != nil {
		e.logger.ErrorContext(ctx, "Failed to replace balance history", log.FieldError, err)
		return nil, fmt.Errorf("%w: replace history: %w", ErrRecompute, err)
	}

	latest := core.Latest(records)
	log.NewStructuredLogger(e.logger).LogRecompute(ctx, len(records), latest.Date.String(), latest.Balance.Cents)
	return records, nil
}

// CurrentBalance returns the record for the most recent date, or the zero
// record when the history is empty. It never recomputes.
func (e *Engine) CurrentBalance(ctx context.Context) (core.BalanceRecord, error) {
	rec, found, err := e.store.LatestBalanceRecord(ctx)
	if err != nil {
		return core.BalanceRecord{}, fmt.Errorf("current balance: %w", err)
	}
	if !found {
		return core.BalanceRecord{}, nil
	}
	return rec, nil
}

// History returns every stored record ordered by date.
func (e *Engine) History(ctx context.Context) ([]core.BalanceRecord, error) {
	records, err := e.store.ListBalanceHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("balance history: %w", err)
	}
	return records, nil
}

// Upsert writes one record directly. The next Recompute overwrites it.
func (e *Engine) Upsert(ctx context.Context, rec core.BalanceRecord) error {
	if err := rec.Date.Validate(); err != nil {
		return err
	}
	if rec.Income.Cents < 0 || rec.Expense.Cents < 0 {
		return core.ErrInvalidAmount
	}
	e.logger.WarnContext(ctx, "Direct balance record write, will be overwritten by the next recompute",
		log.FieldDate, rec.Date.String(),
		log.FieldBalanceCents, rec.Balance.Cents)
	if err := e.store.UpsertBalanceRecord(ctx, rec); err != nil {
		return fmt.Errorf("upsert balance record: %w", err)
	}
	return nil
}
