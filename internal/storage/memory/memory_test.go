package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mybalance/internal/core"
	"mybalance/internal/ledger"
)

func tx(desc string, cents int64, day int) core.Transaction {
	return core.Transaction{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Date:        core.NewDate(2024, 1, day),
		Kind:        core.Income,
	}
}

func TestTransactionsOrderedByDate(t *testing.T) {
	ctx := context.Background()
	s := New(ledger.DuplicateCategorized)
	for _, in := range []core.Transaction{tx("c", 1, 3), tx("a", 1, 1), tx("b", 1, 2)} {
		_, err := s.CreateTransaction(ctx, in)
		require.NoError(t, err)
	}
	all, err := s.ListAllTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Description, all[1].Description, all[2].Description})

	found, err := s.SearchTransactions(ctx, "B")
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestDuplicateRules(t *testing.T) {
	ctx := context.Background()

	s := New(ledger.DuplicateCategorized)
	cat, err := s.CreateCategory(ctx, core.Category{Name: "Food"})
	require.NoError(t, err)
	in := tx("lunch", 100, 1)
	in.CategoryID = &cat.ID
	_, err = s.CreateTransaction(ctx, in)
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)
	_, err = s.CreateTransaction(ctx, tx("lunch", 100, 1))
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, tx("lunch", 100, 1))
	require.NoError(t, err)

	strict := New(ledger.DuplicateStrict)
	_, err = strict.CreateTransaction(ctx, tx("lunch", 100, 1))
	require.NoError(t, err)
	_, err = strict.CreateTransaction(ctx, tx("lunch", 100, 1))
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

	missing := int64(42)
	bad := tx("x", 1, 1)
	bad.CategoryID = &missing
	_, err = s.CreateTransaction(ctx, bad)
	assert.ErrorIs(t, err, ledger.ErrUnknownCategory)
}

func TestCategoryInUse(t *testing.T) {
	ctx := context.Background()
	s := New(ledger.DuplicateCategorized)
	cat, err := s.CreateCategory(ctx, core.Category{Name: "Rent"})
	require.NoError(t, err)
	in := tx("march", 100, 1)
	in.CategoryID = &cat.ID
	created, err := s.CreateTransaction(ctx, in)
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), ledger.ErrCategoryInUse)
	require.NoError(t, s.DeleteTransaction(ctx, created.ID))
	require.NoError(t, s.DeleteCategory(ctx, cat.ID))
}

func TestFailedReplaceKeepsHistory(t *testing.T) {
	ctx := context.Background()
	s := New(ledger.DuplicateCategorized)
	old := []core.BalanceRecord{{Date: core.NewDate(2024, 1, 1), Income: core.Money{Cents: 5}, Balance: core.Money{Cents: 5}}}
	require.NoError(t, s.ReplaceBalanceHistory(ctx, old))

	boom := errors.New("boom")
	s.FailNextReplace(boom)
	err := s.ReplaceBalanceHistory(ctx, nil)
	assert.ErrorIs(t, err, boom)

	history, err := s.ListBalanceHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, old, history)

	// the injected failure is one-shot
	require.NoError(t, s.ReplaceBalanceHistory(ctx, nil))
	_, found, err := s.LatestBalanceRecord(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewFromFilesSeedsCategories(t *testing.T) {
	dir := t.TempDir()
	content := "# seeds\nFood\n\nRent\nFood\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(content), 0o644))

	s := NewFromFiles(dir, "")
	cats, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Food", cats[0].Name)
	assert.Equal(t, "Rent", cats[1].Name)

	empty := NewFromFiles(t.TempDir(), "")
	cats, err = empty.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestSearchTransactionsFoldsCase(t *testing.T) {
	ctx := context.Background()
	s := New(ledger.DuplicateCategorized)
	for _, d := range []string{"Café Roma", "Grocery Store", "Rent"} {
		_, err := s.CreateTransaction(ctx, tx(d, 100, 1))
		require.NoError(t, err)
	}

	found, err := s.SearchTransactions(ctx, "CAFÉ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Café Roma", found[0].Description)

	found, err = s.SearchTransactions(ctx, " grocery ")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
