// Package memory is an in-process export target used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"sync"

	"mybalance/internal/core"
	ports "mybalance/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	rows    []core.BalanceRecord
	exports int
}

var _ ports.Mirror = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// ExportHistory replaces the mirrored rows.
func (s *Store) ExportHistory(_ context.Context, records []core.BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]core.BalanceRecord(nil), records...)
	s.exports++
	return nil
}

// ReadHistory returns a copy of the mirrored rows.
func (s *Store) ReadHistory(_ context.Context) ([]core.BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BalanceRecord(nil), s.rows...), nil
}

// Exports reports how many times ExportHistory ran.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
