package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mybalance/internal/core"
	"mybalance/internal/ledger"
)

func newTestRepo(t *testing.T, policy ledger.DuplicatePolicy) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"), policy)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func income(desc string, cents int64, d core.Date) core.Transaction {
	return core.Transaction{Description: desc, Amount: core.Money{Cents: cents}, Date: d, Kind: core.Income}
}

func TestTransactionCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ledger.DuplicateCategorized)

	created, err := repo.CreateTransaction(ctx, income("  salary ", 10000, core.NewDate(2024, 1, 1)))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "salary", created.Description)
	assert.Equal(t, core.NewDate(2024, 1, 1), created.Date)

	got, err := repo.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got.Amount = core.Money{Cents: 12345}
	got.Kind = core.Expense
	updated, err := repo.UpdateTransaction(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), updated.Amount.Cents)
	assert.Equal(t, core.Expense, updated.Kind)

	require.NoError(t, repo.DeleteTransaction(ctx, created.ID))
	_, err = repo.GetTransaction(ctx, created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, created.ID), ledger.ErrNotFound)

	_, err = repo.UpdateTransaction(ctx, got)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDuplicatePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("categorized", func(t *testing.T) {
		repo := newTestRepo(t, ledger.DuplicateCategorized)
		cat, err := repo.CreateCategory(ctx, core.Category{Name: "Food"})
		require.NoError(t, err)

		tx := income("lunch", 500, core.NewDate(2024, 1, 1))
		tx.CategoryID = &cat.ID
		_, err = repo.CreateTransaction(ctx, tx)
		require.NoError(t, err)
		_, err = repo.CreateTransaction(ctx, tx)
		assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

		// uncategorized duplicates are allowed
		plain := income("lunch", 500, core.NewDate(2024, 1, 1))
		_, err = repo.CreateTransaction(ctx, plain)
		require.NoError(t, err)
		_, err = repo.CreateTransaction(ctx, plain)
		require.NoError(t, err)
	})

	t.Run("strict", func(t *testing.T) {
		repo := newTestRepo(t, ledger.DuplicateStrict)
		plain := income("lunch", 500, core.NewDate(2024, 1, 1))
		first, err := repo.CreateTransaction(ctx, plain)
		require.NoError(t, err)
		_, err = repo.CreateTransaction(ctx, plain)
		assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

		// updating a row does not collide with itself
		first.Amount = core.Money{Cents: 700}
		_, err = repo.UpdateTransaction(ctx, first)
		require.NoError(t, err)
	})
}

func TestUnknownCategory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ledger.DuplicateCategorized)
	missing := int64(999)
	tx := income("salary", 100, core.NewDate(2024, 1, 1))
	tx.CategoryID = &missing
	_, err := repo.CreateTransaction(ctx, tx)
	assert.ErrorIs(t, err, ledger.ErrUnknownCategory)
}

func TestSearchTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ledger.DuplicateCategorized)
	for _, d := range []string{"Grocery Store", "grocery online", "Rent", "100% refund", "Café Roma"} {
		_, err := repo.CreateTransaction(ctx, income(d, 100, core.NewDate(2024, 1, 1)))
		require.NoError(t, err)
	}

	found, err := repo.SearchTransactions(ctx, "GROCERY")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.SearchTransactions(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% refund", found[0].Description)

	found, err = repo.SearchTransactions(ctx, "CAFÉ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Café Roma", found[0].Description)

	found, err = repo.SearchTransactions(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ledger.DuplicateCategorized)

	food, err := repo.CreateCategory(ctx, core.Category{Name: "Food", Description: "meals"})
	require.NoError(t, err)
	_, err = repo.CreateCategory(ctx, core.Category{Name: "Food"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateCategory)

	food.Name = "Groceries"
	food, err = repo.UpdateCategory(ctx, food)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", food.Name)

	tx := income("market", 100, core.NewDate(2024, 1, 1))
	tx.CategoryID = &food.ID
	created, err := repo.CreateTransaction(ctx, tx)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, food.ID), ledger.ErrCategoryInUse)

	require.NoError(t, repo.DeleteTransaction(ctx, created.ID))
	require.NoError(t, repo.DeleteCategory(ctx, food.ID))
	assert.ErrorIs(t, repo.DeleteCategory(ctx, food.ID), ledger.ErrNotFound)

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func sampleHistory() []core.BalanceRecord {
	return []core.BalanceRecord{
		{Date: core.NewDate(2024, 1, 1), Income: core.Money{Cents: 10000}, Expense: core.Money{Cents: 3000}, Balance: core.Money{Cents: 7000}},
		{Date: core.NewDate(2024, 1, 2), Income: core.Money{Cents: 5000}, Balance: core.Money{Cents: 12000}},
	}
}

func TestReplaceBalanceHistory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ledger.DuplicateCategorized)

	_, found, err := repo.LatestBalanceRecord(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.ReplaceBalanceHistory(ctx, sampleHistory()))
	history, err := repo.ListBalanceHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHistory(), history)

	latest, found, err := repo.LatestBalanceRecord(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(12000), latest.Balance.Cents)

	require.NoError(t, repo.ReplaceBalanceHistory(ctx, nil))
	history, err = repo.ListBalanceHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReplaceBalanceHistoryIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ledger.DuplicateCategorized)
	require.NoError(t, repo.ReplaceBalanceHistory(ctx, sampleHistory()))

	_, err := repo.DB().ExecContext(ctx, `CREATE TRIGGER fail_insert BEFORE INSERT ON balance_history
		WHEN NEW.date = '2024-01-02' BEGIN SELECT RAISE(ABORT, 'boom'); END`)
	require.NoError(t, err)

	replacement := []core.BalanceRecord{
		{Date: core.NewDate(2024, 1, 1), Income: core.Money{Cents: 1}, Balance: core.Money{Cents: 1}},
		{Date: core.NewDate(2024, 1, 2), Income: core.Money{Cents: 1}, Balance: core.Money{Cents: 2}},
	}
	require.Error(t, repo.ReplaceBalanceHistory(ctx, replacement))

	history, err := repo.ListBalanceHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHistory(), history)
}

func TestUpsertBalanceRecord(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ledger.DuplicateCategorized)
	require.NoError(t, repo.ReplaceBalanceHistory(ctx, sampleHistory()))

	rec := core.BalanceRecord{Date: core.NewDate(2024, 1, 2), Income: core.Money{Cents: 1}, Balance: core.Money{Cents: 99}}
	require.NoError(t, repo.UpsertBalanceRecord(ctx, rec))

	history, err := repo.ListBalanceHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, rec, history[1])
}
