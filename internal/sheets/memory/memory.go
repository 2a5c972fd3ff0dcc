// Package memory is an in-process sheet mirror for development and tests.
package memory

import (
	"context"
	"sync"

	"expenses/internal/core"
	"expenses/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Expense
}

var _ sheets.Mirror = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the expense after validating it.
func (s *Store) Append(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.Category = e.Category.Canonical()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, e)
	return nil
}

func (s *Store) DeleteMatching(_ context.Context, e core.Expense) (int, error) {
	return s.deleteWhere(e.Matches), nil
}

func (s *Store) DeleteDate(_ context.Context, d core.Date) (int, error) {
	return s.deleteWhere(func(e core.Expense) bool { return e.Date.Equal(d.Time) }), nil
}

// Rows returns a snapshot of the mirrored rows in insertion order.
func (s *Store) Rows() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.rows...)
}

func (s *Store) deleteWhere(match func(core.Expense) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	removed := 0
	for _, e := range s.rows {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.rows = kept
	return removed
}
