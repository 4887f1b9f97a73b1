// Package memory is an in-process export sink used in development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"moneta/internal/export"
)

type Store struct {
	mu    sync.Mutex
	items []export.Row
}

var (
	_ export.RowAppender = (*Store)(nil)
	_ export.RowRemover  = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row export.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, row)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

func (s *Store) Remove(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.items {
		if row.TransactionID == transactionID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the exported rows.
func (s *Store) Rows() []export.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.Row(nil), s.items...)
}
