package storage

import (
	"context"
	"database/sql"
)

const transactionColumns = `id, description, amount_cents, date, kind, category_id`

func scanTransaction(row interface{ Scan(...interface{}) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Description, &t.AmountCents, &t.Date, &t.Kind, &t.CategoryID)
	return t, err
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (description, amount_cents, date, kind, category_id)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	Description string
	AmountCents int64
	Date        string
	Kind        string
	CategoryID  sql.NullInt64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Description, arg.AmountCents, arg.Date, arg.Kind, arg.CategoryID)
	return scanTransaction(row)
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions
SET description = ?, amount_cents = ?, date = ?, kind = ?, category_id = ?
WHERE id = ?
RETURNING ` + transactionColumns

type UpdateTransactionParams struct {
	Description string
	AmountCents int64
	Date        string
	Kind        string
	CategoryID  sql.NullInt64
	ID          int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Description, arg.AmountCents, arg.Date, arg.Kind, arg.CategoryID, arg.ID)
	return scanTransaction(row)
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + ` FROM transactions ORDER BY date, id`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const searchTransactions = `-- name: SearchTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE instr(fold(description), fold(?)) > 0
ORDER BY date, id`

func (q *Queries) SearchTransactions(ctx context.Context, term string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, searchTransactions, term)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const countUncategorizedByDescription = `-- name: CountUncategorizedByDescription :one
SELECT COUNT(*) FROM transactions
WHERE category_id IS NULL AND description = ? AND id != ?`

type CountUncategorizedByDescriptionParams struct {
	Description string
	ExcludeID   int64
}

func (q *Queries) CountUncategorizedByDescription(ctx context.Context, arg CountUncategorizedByDescriptionParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUncategorizedByDescription, arg.Description, arg.ExcludeID).Scan(&n)
	return n, err
}

const categoryColumns = `id, name, description`

func scanCategory(row interface{ Scan(...interface{}) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description)
	return c, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, description) VALUES (?, ?)
RETURNING ` + categoryColumns

func (q *Queries) CreateCategory(ctx context.Context, name, description string) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, createCategory, name, description))
}

const getCategory = `-- name: GetCategory :one
SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories SET name = ?, description = ? WHERE id = ?
RETURNING ` + categoryColumns

func (q *Queries) UpdateCategory(ctx context.Context, id int64, name, description string) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, updateCategory, name, description, id))
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countTransactionsByCategory = `-- name: CountTransactionsByCategory :one
SELECT COUNT(*) FROM transactions WHERE category_id = ?`

func (q *Queries) CountTransactionsByCategory(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTransactionsByCategory, id).Scan(&n)
	return n, err
}

const listCategories = `-- name: ListCategories :many
SELECT ` + categoryColumns + ` FROM categories ORDER BY name`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const historyColumns = `id, date, income_cents, expense_cents, balance_cents`

func scanHistory(row interface{ Scan(...interface{}) error }) (BalanceHistory, error) {
	var h BalanceHistory
	err := row.Scan(&h.ID, &h.Date, &h.IncomeCents, &h.ExpenseCents, &h.BalanceCents)
	return h, err
}

const deleteBalanceHistory = `-- name: DeleteBalanceHistory :exec
DELETE FROM balance_history`

func (q *Queries) DeleteBalanceHistory(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteBalanceHistory)
	return err
}

const insertBalanceRecord = `-- name: InsertBalanceRecord :exec
INSERT INTO balance_history (date, income_cents, expense_cents, balance_cents)
VALUES (?, ?, ?, ?)`

type InsertBalanceRecordParams struct {
	Date         string
	IncomeCents  int64
	ExpenseCents int64
	BalanceCents int64
}

func (q *Queries) InsertBalanceRecord(ctx context.Context, arg InsertBalanceRecordParams) error {
	_, err := q.db.ExecContext(ctx, insertBalanceRecord,
		arg.Date, arg.IncomeCents, arg.ExpenseCents, arg.BalanceCents)
	return err
}

const upsertBalanceRecord = `-- name: UpsertBalanceRecord :exec
INSERT INTO balance_history (date, income_cents, expense_cents, balance_cents)
VALUES (?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
    income_cents = excluded.income_cents,
    expense_cents = excluded.expense_cents,
    balance_cents = excluded.balance_cents`

func (q *Queries) UpsertBalanceRecord(ctx context.Context, arg InsertBalanceRecordParams) error {
	_, err := q.db.ExecContext(ctx, upsertBalanceRecord,
		arg.Date, arg.IncomeCents, arg.ExpenseCents, arg.BalanceCents)
	return err
}

const listBalanceHistory = `-- name: ListBalanceHistory :many
SELECT ` + historyColumns + ` FROM balance_history ORDER BY date`

func (q *Queries) ListBalanceHistory(ctx context.Context) ([]BalanceHistory, error) {
	rows, err := q.db.QueryContext(ctx, listBalanceHistory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BalanceHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const latestBalanceRecord = `-- name: LatestBalanceRecord :one
SELECT ` + historyColumns + ` FROM balance_history ORDER BY date DESC LIMIT 1`

func (q *Queries) LatestBalanceRecord(ctx context.Context) (BalanceHistory, error) {
	return scanHistory(q.db.QueryRowContext(ctx, latestBalanceRecord))
}
