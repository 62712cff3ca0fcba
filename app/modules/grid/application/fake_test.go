package gridservice

import (
	"context"
	"sync"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
)

// FakeStore is a programmable Store. Without Func overrides it behaves like
// an in-memory sheet.
type FakeStore struct {
	mu    sync.Mutex
	trace []string
	grid  [][]string

	ValuesFunc     func(ctx context.Context) ([][]string, error)
	WriteCellsFunc func(ctx context.Context, cells []griddomain.CellWrite) error
	Batches        [][]griddomain.CellWrite
}

var _ Store = (*FakeStore)(nil)

func NewFakeStore(grid [][]string) *FakeStore {
	return &FakeStore{grid: grid}
}

func (f *FakeStore) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStore) Grid() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyGrid(f.grid)
}

func (f *FakeStore) Values(ctx context.Context) ([][]string, error) {
	f.record("Values")
	if f.ValuesFunc != nil {
		return f.ValuesFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyGrid(f.grid), nil
}

func (f *FakeStore) WriteCells(ctx context.Context, cells []griddomain.CellWrite) error {
	f.record("WriteCells")
	if f.WriteCellsFunc != nil {
		if err := f.WriteCellsFunc(ctx, cells); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Batches = append(f.Batches, append([]griddomain.CellWrite(nil), cells...))
	for _, c := range cells {
		for len(f.grid) <= c.Row {
			f.grid = append(f.grid, nil)
		}
		for len(f.grid[c.Row]) <= c.Col {
			f.grid[c.Row] = append(f.grid[c.Row], "")
		}
		f.grid[c.Row][c.Col] = c.Value
	}
	return nil
}

func copyGrid(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
