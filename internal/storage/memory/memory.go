// Package memory is an in-process ledger store for development and tests.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mybalance/internal/core"
	"mybalance/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	policy   ledger.DuplicatePolicy
	nextTxID int64
	nextCat  int64
	txs      map[int64]core.Transaction
	cats     map[int64]core.Category
	history  []core.BalanceRecord

	failReplace error
}

var _ ledger.Store = (*Store)(nil)

func New(policy ledger.DuplicatePolicy) *Store {
	if policy == "" {
		policy = ledger.DuplicateCategorized
	}
	return &Store{
		policy: policy,
		txs:    map[int64]core.Transaction{},
		cats:   map[int64]core.Category{},
	}
}

// NewFromFiles seeds categories from base/seed_categories.txt, one name per
// line. Blank lines and # comments are skipped.
func NewFromFiles(base string, policy ledger.DuplicatePolicy) *Store {
	s := New(policy)
	for _, name := range readLines(filepath.Join(base, "seed_categories.txt")) {
		_, _ = s.CreateCategory(context.Background(), core.Category{Name: name})
	}
	return s
}

func (s *Store) Close() error { return nil }

// FailNextReplace makes the next ReplaceBalanceHistory call return err
// without touching the stored history.
func (s *Store) FailNextReplace(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReplace = err
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTx(t core.Transaction) core.Transaction {
	t.CategoryID = copyID(t.CategoryID)
	return t
}

func sameCategory(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// checkTx enforces uniqueness and the category reference. Callers hold mu.
func (s *Store) checkTx(t core.Transaction) error {
	if t.CategoryID != nil {
		if _, ok := s.cats[*t.CategoryID]; !ok {
			return ledger.ErrUnknownCategory
		}
	}
	for id, other := range s.txs {
		if id == t.ID || other.Description != t.Description {
			continue
		}
		if t.CategoryID == nil && s.policy != ledger.DuplicateStrict {
			continue
		}
		if sameCategory(other.CategoryID, t.CategoryID) {
			return ledger.ErrDuplicateTransaction
		}
	}
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Description = strings.TrimSpace(t.Description)
	t.ID = 0
	if err := s.checkTx(t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.nextTxID++
	t.ID = s.nextTxID
	s.txs[t.ID] = cloneTx(t)
	return cloneTx(t), nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, ledger.ErrNotFound)
	}
	return cloneTx(t), nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[t.ID]; !ok {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, ledger.ErrNotFound)
	}
	t.Description = strings.TrimSpace(t.Description)
	if err := s.checkTx(t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	s.txs[t.ID] = cloneTx(t)
	return cloneTx(t), nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return fmt.Errorf("delete transaction %d: %w", id, ledger.ErrNotFound)
	}
	delete(s.txs, id)
	return nil
}

// sortedTxs returns matching transactions ordered by date then id. Callers hold mu.
func (s *Store) sortedTxs(match func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		if match == nil || match(t) {
			out = append(out, cloneTx(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) ListAllTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTxs(nil), nil
}

func (s *Store) SearchTransactions(_ context.Context, term string) ([]core.Transaction, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTxs(func(t core.Transaction) bool {
		return strings.Contains(strings.ToLower(t.Description), needle)
	}), nil
}

func (s *Store) categoryNameTaken(name string, except int64) bool {
	for id, c := range s.cats {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Name = strings.TrimSpace(c.Name)
	if s.categoryNameTaken(c.Name, 0) {
		return core.Category{}, fmt.Errorf("create category: %w", ledger.ErrDuplicateCategory)
	}
	s.nextCat++
	c.ID = s.nextCat
	s.cats[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, ledger.ErrNotFound)
	}
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[c.ID]; !ok {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, ledger.ErrNotFound)
	}
	c.Name = strings.TrimSpace(c.Name)
	if s.categoryNameTaken(c.Name, c.ID) {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, ledger.ErrDuplicateCategory)
	}
	s.cats[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return fmt.Errorf("delete category %d: %w", id, ledger.ErrNotFound)
	}
	for _, t := range s.txs {
		if t.CategoryID != nil && *t.CategoryID == id {
			return fmt.Errorf("delete category %d: %w", id, ledger.ErrCategoryInUse)
		}
	}
	delete(s.cats, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ReplaceBalanceHistory builds the new slice first and swaps it in under
// the lock, so readers see either the old or the new history.
func (s *Store) ReplaceBalanceHistory(_ context.Context, records []core.BalanceRecord) error {
	next := append([]core.BalanceRecord(nil), records...)
	sort.Slice(next, func(i, j int) bool { return next[i].Date.Before(next[j].Date) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failReplace; err != nil {
		s.failReplace = nil
		return fmt.Errorf("replace balance history: %w", err)
	}
	s.history = next
	return nil
}

func (s *Store) ListBalanceHistory(_ context.Context) ([]core.BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BalanceRecord(nil), s.history...), nil
}

func (s *Store) LatestBalanceRecord(_ context.Context) (core.BalanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return core.BalanceRecord{}, false, nil
	}
	return s.history[len(s.history)-1], true, nil
}

func (s *Store) UpsertBalanceRecord(_ context.Context, rec core.BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.history {
		if existing.Date == rec.Date {
			s.history[i] = rec
			return nil
		}
	}
	s.history = append(s.history, rec)
	sort.Slice(s.history, func(i, j int) bool { return s.history[i].Date.Before(s.history[j].Date) })
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
