package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mybalance/internal/core"
	"mybalance/internal/ledger"
	"mybalance/internal/log"
)

// Recomputer rebuilds the balance history.
type Recomputer interface {
	Recompute(ctx context.Context) ([]core.BalanceRecord, error)
}

// Notifier announces a rebuilt history to downstream consumers.
type Notifier interface {
	PublishBalanceRecomputed(ctx context.Context, records []core.BalanceRecord) error
}

// Invalidator drops cached reads after the ledger changes.
type Invalidator interface {
	Invalidate()
}

// TransactionService orchestrates transaction writes, the balance
// recompute that must follow each of them, and the AMQP notification.
type TransactionService struct {
	store    ledger.TransactionStore
	engine   Recomputer
	notifier Notifier
	caches   []Invalidator
	logger   *log.StructuredLogger
}

func NewTransactionService(store ledger.TransactionStore, engine Recomputer, notifier Notifier, caches ...Invalidator) *TransactionService {
	return &TransactionService{
		store:    store,
		engine:   engine,
		notifier: notifier,
		caches:   caches,
		logger:   log.NewStructuredLogger(log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger)),
	}
}

// NewTransactionInput carries unvalidated user input.
type NewTransactionInput struct {
	Description string
	Amount      string
	Date        string
	Kind        string
	CategoryID  *int64
}

// Parse validates the input and converts it to a transaction.
func (in NewTransactionInput) Parse() (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Date:        date,
		Kind:        kind,
		CategoryID:  in.CategoryID,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Create stores t and recomputes the history before returning.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.logChange(ctx, log.OpCreate, created)

	if err := s.afterWrite(ctx); err != nil {
		return created, err
	}
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.logChange(ctx, log.OpUpdate, updated)

	if err := s.afterWrite(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return s.afterWrite(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListAllTransactions(ctx)
}

func (s *TransactionService) Search(ctx context.Context, term string) ([]core.Transaction, error) {
	return s.store.SearchTransactions(ctx, term)
}

// Recompute rebuilds the history on demand and notifies consumers.
func (s *TransactionService) Recompute(ctx context.Context) ([]core.BalanceRecord, error) {
	records, err := s.engine.Recompute(ctx)
	s.invalidate()
	if err != nil {
		return nil, err
	}
	s.publish(ctx, records)
	return records, nil
}

// afterWrite runs the recompute that every mutation requires. The write
// itself is already durable, so a failed recompute is reported but the
// caller keeps the stored result.
func (s *TransactionService) afterWrite(ctx context.Context) error {
	_, err := s.Recompute(ctx)
	return err
}

func (s *TransactionService) invalidate() {
	for _, c := range s.caches {
		c.Invalidate()
	}
}

func (s *TransactionService) publish(ctx context.Context, records []core.BalanceRecord) {
	if s.notifier == nil {
		slog.DebugContext(ctx, "AMQP notifier not available, skipping balance message")
		return
	}
	if err := s.notifier.PublishBalanceRecomputed(ctx, records); err != nil {
		slog.ErrorContext(ctx, "Failed to publish balance message", log.FieldError, err)
	}
}

func (s *TransactionService) logChange(ctx context.Context, op string, t core.Transaction) {
	s.logger.LogTransactionChanged(ctx, op, t.ID, t.Description, t.Amount.Cents, string(t.Kind), t.Date.String())
}
