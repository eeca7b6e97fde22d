// Package ledger declares the storage ports used by the balance engine and
// the services layer.
package ledger

import (
	"context"
	"errors"

	"mybalance/internal/core"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrDuplicateCategory    = errors.New("duplicate category")
	ErrCategoryInUse        = errors.New("category in use")
	ErrUnknownCategory      = errors.New("unknown category")
)

// TransactionReader returns every stored transaction, fully materialized.
type TransactionReader interface {
	ListAllTransactions(ctx context.Context) ([]core.Transaction, error)
}

// HistoryStore persists the derived balance history.
type HistoryStore interface {
	// ReplaceBalanceHistory deletes every record and inserts records in a
	// single atomic unit. On error the previous history is left intact.
	ReplaceBalanceHistory(ctx context.Context, records []core.BalanceRecord) error
	// ListBalanceHistory returns all records ordered by date ascending.
	ListBalanceHistory(ctx context.Context) ([]core.BalanceRecord, error)
	LatestBalanceRecord(ctx context.Context) (core.BalanceRecord, bool, error)
	UpsertBalanceRecord(ctx context.Context, rec core.BalanceRecord) error
}

type TransactionStore interface {
	TransactionReader
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	// SearchTransactions matches term as a case-insensitive substring of
	// the description, ordered by date then id. Case folding follows Go's
	// Unicode lowercase mapping on every backend.
	SearchTransactions(ctx context.Context, term string) ([]core.Transaction, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// Store is the full ledger: everything a backend must provide.
type Store interface {
	TransactionStore
	CategoryStore
	HistoryStore
	Close() error
}

// DuplicatePolicy controls whether uncategorized transactions take part in
// description uniqueness.
type DuplicatePolicy string

const (
	// DuplicateCategorized enforces (description, category) uniqueness only
	// when a category is set.
	DuplicateCategorized DuplicatePolicy = "categorized"
	// DuplicateStrict also forbids two uncategorized transactions with the
	// same description.
	DuplicateStrict DuplicatePolicy = "strict"
)

func (p DuplicatePolicy) Valid() bool {
	return p == DuplicateCategorized || p == DuplicateStrict
}
