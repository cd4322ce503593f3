// Package memory is an in-process ExpenseAppender for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendwise/internal/core"
	"spendwise/internal/sheets"
)

var _ sheets.ExpenseAppender = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows [][]string
}

func New() *Store {
	return &Store{}
}

// Append stores the expense row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, userID string, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, sheets.ExpenseRow(userID, e))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of every appended row.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
