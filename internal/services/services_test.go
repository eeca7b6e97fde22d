package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mybalance/internal/balance"
	"mybalance/internal/core"
	"mybalance/internal/ledger"
	"mybalance/internal/storage/memory"
)

type recordingNotifier struct {
	calls [][]core.BalanceRecord
	err   error
}

func (n *recordingNotifier) PublishBalanceRecomputed(_ context.Context, records []core.BalanceRecord) error {
	n.calls = append(n.calls, records)
	return n.err
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate() { c.n++ }

func newService(t *testing.T) (*TransactionService, *memory.Store, *balance.Engine, *recordingNotifier, *countingCache) {
	t.Helper()
	store := memory.New(ledger.DuplicateCategorized)
	engine := balance.NewEngine(store, nil)
	notifier := &recordingNotifier{}
	cache := &countingCache{}
	return NewTransactionService(store, engine, notifier, cache), store, engine, notifier, cache
}

func input(desc, amount, date, kind string) NewTransactionInput {
	return NewTransactionInput{Description: desc, Amount: amount, Date: date, Kind: kind}
}

func TestNewTransactionInputParse(t *testing.T) {
	tx, err := input("  salary ", "100,5", "2024-01-01", "Income").Parse()
	require.NoError(t, err)
	assert.Equal(t, "salary", tx.Description)
	assert.Equal(t, int64(10050), tx.Amount.Cents)
	assert.Equal(t, core.Income, tx.Kind)

	_, err = input("x", "-1", "2024-01-01", "income").Parse()
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = input("x", "1", "01/01/2024", "income").Parse()
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	_, err = input("x", "1", "2024-01-01", "refund").Parse()
	assert.ErrorIs(t, err, core.ErrInvalidKind)
	_, err = input(" ", "1", "2024-01-01", "income").Parse()
	assert.ErrorIs(t, err, core.ErrEmptyDescription)
}

func TestEveryMutationRecomputes(t *testing.T) {
	ctx := context.Background()
	svc, _, engine, notifier, cache := newService(t)

	in, err := input("salary", "100", "2024-01-01", "income").Parse()
	require.NoError(t, err)
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	current, err := engine.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100.00", current.Balance.String())

	created.Amount = core.Money{Cents: 2500}
	created.Kind = core.Expense
	_, err = svc.Update(ctx, created)
	require.NoError(t, err)
	current, err = engine.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "-25.00", current.Balance.String())

	require.NoError(t, svc.Delete(ctx, created.ID))
	history, err := engine.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	assert.Len(t, notifier.calls, 3)
	assert.Equal(t, 3, cache.n)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	svc, _, engine, notifier, _ := newService(t)
	notifier.err = errors.New("broker down")

	in, err := input("salary", "10", "2024-01-01", "income").Parse()
	require.NoError(t, err)
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)

	current, err := engine.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.00", current.Balance.String())
}

func TestRecomputeFailureIsReported(t *testing.T) {
	ctx := context.Background()
	svc, store, _, notifier, cache := newService(t)
	store.FailNextReplace(errors.New("locked"))

	in, err := input("salary", "10", "2024-01-01", "income").Parse()
	require.NoError(t, err)
	created, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, balance.ErrRecompute)
	assert.NotZero(t, created.ID)
	assert.Empty(t, notifier.calls)
	assert.Equal(t, 1, cache.n)
}

func TestNilNotifier(t *testing.T) {
	store := memory.New("")
	svc := NewTransactionService(store, balance.NewEngine(store, nil), nil)
	_, err := svc.Recompute(context.Background())
	require.NoError(t, err)
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, notifier, _ := newService(t)

	err := svc.Delete(ctx, 404)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Empty(t, notifier.calls)

	_, err = svc.Create(ctx, core.Transaction{})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	store := memory.New("")
	svc := NewCategoryService(store)

	_, err := svc.Create(ctx, core.Category{Name: "   "})
	assert.ErrorIs(t, err, core.ErrEmptyCategoryName)

	food, err := svc.Create(ctx, core.Category{Name: " Food "})
	require.NoError(t, err)
	assert.Equal(t, "Food", food.Name)

	_, err = svc.Create(ctx, core.Category{Name: "Food"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateCategory)

	food.Description = "meals"
	food, err = svc.Update(ctx, food)
	require.NoError(t, err)
	got, err := svc.Get(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, "meals", got.Description)

	require.NoError(t, svc.Delete(ctx, food.ID))
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
