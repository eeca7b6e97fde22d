package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mybalance/internal/core"
	"mybalance/internal/ledger"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	policy  ledger.DuplicatePolicy
}

var _ ledger.Store = (*SQLiteRepository)(nil)

// dsn enables foreign keys on every connection the pool opens.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string, policy ledger.DuplicatePolicy) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps write transactions strictly serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if policy == "" {
		policy = ledger.DuplicateCategorized
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		policy:  policy,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// DB exposes the underlying handle for tests and diagnostics.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func sqliteCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}

func mapTransactionErr(err error) error {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return ledger.ErrDuplicateTransaction
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ledger.ErrUnknownCategory
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrNotFound
	}
	return err
}

func mapCategoryErr(err error) error {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return ledger.ErrDuplicateCategory
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_TRIGGER:
		return ledger.ErrCategoryInUse
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrNotFound
	}
	return err
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func toCoreTransaction(t Transaction) (core.Transaction, error) {
	d, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d has malformed date %q: %w", t.ID, t.Date, err)
	}
	out := core.Transaction{
		ID:          t.ID,
		Description: t.Description,
		Amount:      core.Money{Cents: t.AmountCents},
		Date:        d,
		Kind:        core.TransactionKind(t.Kind),
	}
	if t.CategoryID.Valid {
		id := t.CategoryID.Int64
		out.CategoryID = &id
	}
	return out, nil
}

func toCoreTransactions(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// checkStrictDuplicate applies the strict policy to uncategorized rows,
// which the UNIQUE index treats as distinct because NULLs never collide.
func (r *SQLiteRepository) checkStrictDuplicate(ctx context.Context, q *Queries, t core.Transaction) error {
	if r.policy != ledger.DuplicateStrict || t.HasCategory() {
		return nil
	}
	n, err := q.CountUncategorizedByDescription(ctx, CountUncategorizedByDescriptionParams{
		Description: t.Description,
		ExcludeID:   t.ID,
	})
	if err != nil {
		return fmt.Errorf("check duplicate description: %w", err)
	}
	if n > 0 {
		return ledger.ErrDuplicateTransaction
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Description = strings.TrimSpace(t.Description)
	var created Transaction
	err := r.withTx(ctx, func(q *Queries) error {
		if err := r.checkStrictDuplicate(ctx, q, t); err != nil {
			return err
		}
		row, err := q.CreateTransaction(ctx, CreateTransactionParams{
			Description: t.Description,
			AmountCents: t.Amount.Cents,
			Date:        t.Date.String(),
			Kind:        string(t.Kind),
			CategoryID:  nullID(t.CategoryID),
		})
		if err != nil {
			return mapTransactionErr(err)
		}
		created = row
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", created.ID,
		"kind", created.Kind,
		"amount_cents", created.AmountCents,
		"date", created.Date)

	return toCoreTransaction(created)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, mapTransactionErr(err))
	}
	return toCoreTransaction(row)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Description = strings.TrimSpace(t.Description)
	var updated Transaction
	err := r.withTx(ctx, func(q *Queries) error {
		if err := r.checkStrictDuplicate(ctx, q, t); err != nil {
			return err
		}
		row, err := q.UpdateTransaction(ctx, UpdateTransactionParams{
			Description: t.Description,
			AmountCents: t.Amount.Cents,
			Date:        t.Date.String(),
			Kind:        string(t.Kind),
			CategoryID:  nullID(t.CategoryID),
			ID:          t.ID,
		})
		if err != nil {
			return mapTransactionErr(err)
		}
		updated = row
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return toCoreTransaction(updated)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ledger.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

func (r *SQLiteRepository) SearchTransactions(ctx context.Context, term string) ([]core.Transaction, error) {
	rows, err := r.queries.SearchTransactions(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("search transactions %q: %w", term, err)
	}
	return toCoreTransactions(rows)
}

func toCoreCategory(c Category) core.Category {
	return core.Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := r.queries.CreateCategory(ctx, strings.TrimSpace(c.Name), c.Description)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", mapCategoryErr(err))
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "id", row.ID, "name", row.Name)
	return toCoreCategory(row), nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, mapCategoryErr(err))
	}
	return toCoreCategory(row), nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := r.queries.UpdateCategory(ctx, c.ID, strings.TrimSpace(c.Name), c.Description)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, mapCategoryErr(err))
	}
	return toCoreCategory(row), nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	err := r.withTx(ctx, func(q *Queries) error {
		used, err := q.CountTransactionsByCategory(ctx, id)
		if err != nil {
			return err
		}
		if used > 0 {
			return ledger.ErrCategoryInUse
		}
		n, err := q.DeleteCategory(ctx, id)
		if err != nil {
			return mapCategoryErr(err)
		}
		if n == 0 {
			return ledger.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCoreCategory(row))
	}
	return out, nil
}

func toHistoryParams(rec core.BalanceRecord) InsertBalanceRecordParams {
	return InsertBalanceRecordParams{
		Date:         rec.Date.String(),
		IncomeCents:  rec.Income.Cents,
		ExpenseCents: rec.Expense.Cents,
		BalanceCents: rec.Balance.Cents,
	}
}

func toCoreRecord(h BalanceHistory) (core.BalanceRecord, error) {
	d, err := core.ParseDate(h.Date)
	if err != nil {
		return core.BalanceRecord{}, fmt.Errorf("balance record %d has malformed date %q: %w", h.ID, h.Date, err)
	}
	return core.BalanceRecord{
		Date:    d,
		Income:  core.Money{Cents: h.IncomeCents},
		Expense: core.Money{Cents: h.ExpenseCents},
		Balance: core.Money{Cents: h.BalanceCents},
	}, nil
}

// ReplaceBalanceHistory swaps the whole history inside one transaction.
func (r *SQLiteRepository) ReplaceBalanceHistory(ctx context.Context, records []core.BalanceRecord) error {
	err := r.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteBalanceHistory(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		for _, rec := range records {
			if err := q.InsertBalanceRecord(ctx, toHistoryParams(rec)); err != nil {
				return fmt.Errorf("insert record %s: %w", rec.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace balance history: %w", err)
	}

	slog.InfoContext(ctx, "Balance history replaced", "records", len(records))
	return nil
}

func (r *SQLiteRepository) ListBalanceHistory(ctx context.Context) ([]core.BalanceRecord, error) {
	rows, err := r.queries.ListBalanceHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list balance history: %w", err)
	}
	out := make([]core.BalanceRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toCoreRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *SQLiteRepository) LatestBalanceRecord(ctx context.Context) (core.BalanceRecord, bool, error) {
	row, err := r.queries.LatestBalanceRecord(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BalanceRecord{}, false, nil
	}
	if err != nil {
		return core.BalanceRecord{}, false, fmt.Errorf("latest balance record: %w", err)
	}
	rec, err := toCoreRecord(row)
	if err != nil {
		return core.BalanceRecord{}, false, err
	}
	return rec, true, nil
}

func (r *SQLiteRepository) UpsertBalanceRecord(ctx context.Context, rec core.BalanceRecord) error {
	if err := r.queries.UpsertBalanceRecord(ctx, toHistoryParams(rec)); err != nil {
		return fmt.Errorf("upsert balance record %s: %w", rec.Date, err)
	}
	return nil
}
