// Package gridmemory keeps the grid in process memory.
package gridmemory

import (
	"context"
	"sync"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
)

// Store is an in-memory grid. It trims trailing empty cells and rows the
// same way the spreadsheet backends do.
type Store struct {
	mu     sync.RWMutex
	values [][]string
	writes int
}

// NewStore returns a Store seeded with a copy of values.
func NewStore(values [][]string) *Store {
	return &Store{values: clone(values)}
}

func (s *Store) Values(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return trim(clone(s.values)), nil
}

func (s *Store) WriteCells(ctx context.Context, cells []griddomain.CellWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range cells {
		for len(s.values) <= c.Row {
			s.values = append(s.values, nil)
		}
		row := s.values[c.Row]
		for len(row) <= c.Col {
			row = append(row, "")
		}
		row[c.Col] = c.Value
		s.values[c.Row] = row
	}
	s.writes++
	return nil
}

// Writes counts WriteCells batches.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func clone(values [][]string) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func trim(values [][]string) [][]string {
	for i, row := range values {
		end := len(row)
		for end > 0 && row[end-1] == "" {
			end--
		}
		values[i] = row[:end]
	}
	end := len(values)
	for end > 0 && len(values[end-1]) == 0 {
		end--
	}
	return values[:end]
}
