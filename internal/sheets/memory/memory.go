package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "salmonsurvey/internal/sheets"
)

// Store keeps appended totals rows in process.
type Store struct {
	mu   sync.Mutex
	rows []ports.TotalsRow
	runs map[string]int
}

var _ ports.TotalsSink = (*Store)(nil)

func New() *Store {
	return &Store{runs: make(map[string]int)}
}

// AppendTotals stores the row and returns a synthetic row reference.
func (s *Store) AppendTotals(_ context.Context, row ports.TotalsRow) (string, error) {
	if row.RunID == "" {
		return "", errors.New("totals row without run id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	s.runs[row.RunID] = len(s.rows)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) HasRun(_ context.Context, runID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.runs[runID]
	return ok, nil
}

// Rows returns a copy of the appended rows in order.
func (s *Store) Rows() []ports.TotalsRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.TotalsRow(nil), s.rows...)
}
