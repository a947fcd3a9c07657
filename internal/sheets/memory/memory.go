// Package memory is an in-process RowWriter used by tests and by
// deployments that run without a remote spreadsheet.
package memory

import (
	"context"
	"fmt"
	"sync"

	"pozoagua/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
}

func New() *Store {
	return &Store{}
}

var _ sheets.RowWriter = (*Store)(nil)

// AppendSale stores the row and returns a synthetic row reference.
func (s *Store) AppendSale(_ context.Context, row sheets.LedgerRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.LedgerRow(nil), s.rows...)
}
