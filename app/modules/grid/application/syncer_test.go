package gridservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
	gridmemory "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/memory"
	"github.com/Black-And-White-Club/step-bot/internal/keylock"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/goleak"
)

var medals = []string{"🥇", "🥈", "🥉"}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSyncer(store Store) *Syncer {
	return NewSyncer(store, time.Second, medals, slog.Default(), observability.NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"))
}

var feb1 = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

func TestSyncer_WriteCell(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		grid        [][]string
		identity    string
		wantGrid    [][]string
		wantBatches int
	}{
		{
			name:        "empty grid gets header, row and column in one batch",
			grid:        nil,
			identity:    "Vasya",
			wantGrid:    [][]string{{"Nick", "01.02.2026"}, {"Vasya", "12000"}},
			wantBatches: 1,
		},
		{
			name:        "existing cell is overwritten",
			grid:        [][]string{{"Nick", "01.02.2026"}, {"Vasya", "9000 🥈"}},
			identity:    "vasya",
			wantGrid:    [][]string{{"Nick", "01.02.2026"}, {"Vasya", "12000"}},
			wantBatches: 1,
		},
		{
			name:        "new column appended after existing dates",
			grid:        [][]string{{"Nick", "31.01.2026"}, {"Vasya", "5000"}},
			identity:    "VASYA",
			wantGrid:    [][]string{{"Nick", "31.01.2026", "01.02.2026"}, {"Vasya", "5000", "12000"}},
			wantBatches: 1,
		},
		{
			name:        "new row appended below existing identities",
			grid:        [][]string{{"Nick", "01.02.2026"}, {"Petya", "7000"}},
			identity:    "Vasya",
			wantGrid:    [][]string{{"Nick", "01.02.2026"}, {"Petya", "7000"}, {"Vasya", "12000"}},
			wantBatches: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewFakeStore(tt.grid)
			s := newSyncer(store)

			require.NoError(t, s.WriteCell(ctx, tt.identity, feb1, 12000))
			assert.Equal(t, tt.wantGrid, store.Grid())
			assert.Len(t, store.Batches, tt.wantBatches)
		})
	}
}

func TestSyncer_WriteCellFailureLeavesNoRow(t *testing.T) {
	store := NewFakeStore([][]string{{"Nick", "01.02.2026"}})
	store.WriteCellsFunc = func(ctx context.Context, cells []griddomain.CellWrite) error {
		return errors.New("quota exceeded")
	}
	s := newSyncer(store)

	err := s.WriteCell(context.Background(), "Vasya", feb1, 12000)
	require.Error(t, err)

	var sf *SyncFailure
	require.True(t, errors.As(err, &sf))
	assert.Equal(t, OpWrite, sf.Op)
	assert.Equal(t, "Vasya", sf.Identity)
	assert.Equal(t, 1, sf.Row)
	assert.Equal(t, 1, sf.Col)
	assert.Equal(t, [][]string{{"Nick", "01.02.2026"}}, store.Grid())
}

func TestSyncer_TimeoutIsSyncFailure(t *testing.T) {
	store := NewFakeStore(nil)
	store.ValuesFunc = func(ctx context.Context) ([][]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s := NewSyncer(store, 10*time.Millisecond, medals, slog.Default(), observability.NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"))

	err := s.WriteCell(context.Background(), "Vasya", feb1, 1)
	var sf *SyncFailure
	require.True(t, errors.As(err, &sf))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSyncer_EnsureRowAndColumn(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore(nil)
	s := newSyncer(store)

	row, err := s.EnsureRow(ctx, "Vasya")
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	again, err := s.EnsureRow(ctx, "vasya")
	require.NoError(t, err)
	assert.Equal(t, row, again, "case variants resolve to the same row")

	col, err := s.EnsureColumn(ctx, feb1)
	require.NoError(t, err)
	assert.Equal(t, 1, col)

	again, err = s.EnsureColumn(ctx, feb1)
	require.NoError(t, err)
	assert.Equal(t, col, again)

	assert.Equal(t, [][]string{{"Nick", "01.02.2026"}, {"Vasya"}}, store.Grid())
}

func TestSyncer_AnnotateCell(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		store := NewFakeStore([][]string{{"Nick", "01.02.2026"}, {"Vasya", "12000"}})
		s := newSyncer(store)

		require.NoError(t, s.AnnotateCell(ctx, "vasya", feb1, "🥇"))
		require.NoError(t, s.AnnotateCell(ctx, "vasya", feb1, "🥇"))

		assert.Equal(t, "12000 🥇", store.Grid()[1][1])
		assert.Len(t, store.Batches, 1, "second annotation must not write")
	})

	t.Run("replaces a different symbol", func(t *testing.T) {
		store := NewFakeStore([][]string{{"Nick", "01.02.2026"}, {"Vasya", "12000 🥇"}})
		s := newSyncer(store)

		require.NoError(t, s.AnnotateCell(ctx, "Vasya", feb1, "🥈"))
		assert.Equal(t, "12000 🥈", store.Grid()[1][1])
	})

	t.Run("empty symbol clears", func(t *testing.T) {
		store := NewFakeStore([][]string{{"Nick", "01.02.2026"}, {"Vasya", "12000 🥉"}})
		s := newSyncer(store)

		require.NoError(t, s.AnnotateCell(ctx, "Vasya", feb1, ""))
		assert.Equal(t, "12000", store.Grid()[1][1])
	})

	t.Run("missing cell", func(t *testing.T) {
		store := NewFakeStore([][]string{{"Nick", "01.02.2026"}, {"Vasya"}})
		s := newSyncer(store)

		err := s.AnnotateCell(ctx, "Vasya", feb1, "🥇")
		assert.ErrorIs(t, err, ErrCellNotFound)

		err = s.AnnotateCell(ctx, "Petya", feb1, "🥇")
		assert.ErrorIs(t, err, ErrCellNotFound)
		assert.Empty(t, store.Batches)
	})
}

func TestSyncer_ReadCell(t *testing.T) {
	store := NewFakeStore([][]string{{"Nick", "01.02.2026"}, {"Vasya", "12000 🥇"}})
	s := newSyncer(store)

	v, ok, err := s.ReadCell(context.Background(), "VASYA", feb1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12000 🥇", v)

	_, ok, err = s.ReadCell(context.Background(), "Petya", feb1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSyncer_ConcurrentWritesNeverDuplicateRows(t *testing.T) {
	ctx := context.Background()
	store := gridmemory.NewStore(nil)
	s := newSyncer(store)

	identities := []string{"Vasya", "vasya", "VASYA", "Petya", "petya", "Masha"}
	dates := []time.Time{feb1, feb1.AddDate(0, 0, 1), feb1.AddDate(0, 0, 2)}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		for _, id := range identities {
			for _, d := range dates {
				wg.Add(1)
				go func(id string, d time.Time, steps int) {
					defer wg.Done()
					assert.NoError(t, s.WriteCell(ctx, id, d, steps))
				}(id, d, i)
			}
		}
	}
	wg.Wait()

	grid, err := store.Values(ctx)
	require.NoError(t, err)

	rows := map[string]int{}
	for _, row := range grid[1:] {
		rows[griddomain.NormalizeKey(row[0])]++
	}
	assert.Equal(t, map[string]int{"vasya": 1, "petya": 1, "masha": 1}, rows)

	cols := map[string]int{}
	for _, h := range grid[0][1:] {
		cols[h]++
	}
	assert.Len(t, cols, len(dates))
	for h, n := range cols {
		assert.Equal(t, 1, n, fmt.Sprintf("column %s duplicated", h))
	}
}

// slowStore widens the gap between reading the sheet and writing it back.
type slowStore struct {
	*gridmemory.Store
	delay time.Duration
}

func (s slowStore) Values(ctx context.Context) ([][]string, error) {
	values, err := s.Store.Values(ctx)
	time.Sleep(s.delay)
	return values, err
}

func TestSyncer_SharedLockerAcrossSyncers(t *testing.T) {
	ctx := context.Background()

	for trial := 0; trial < 50; trial++ {
		store := slowStore{Store: gridmemory.NewStore(nil), delay: 2 * time.Millisecond}
		locks := keylock.New()
		a := NewSyncer(store, time.Second, medals, slog.Default(), observability.NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"), WithLocker(locks))
		b := NewSyncer(store, time.Second, medals, slog.Default(), observability.NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"), WithLocker(locks))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.WriteCell(ctx, "Vasya", feb1, 12000))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, b.WriteCell(ctx, "Petya", feb1, 9000))
		}()
		wg.Wait()

		grid, err := store.Values(ctx)
		require.NoError(t, err)
		require.Len(t, grid, 3, "trial %d: %v", trial, grid)

		vasya, ok, err := a.ReadCell(ctx, "Vasya", feb1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "12000", vasya)

		petya, ok, err := b.ReadCell(ctx, "Petya", feb1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "9000", petya)
	}
}

func TestWithLocker_NilKeepsDefault(t *testing.T) {
	s := NewSyncer(gridmemory.NewStore(nil), time.Second, medals, slog.Default(), observability.NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"), WithLocker(nil))
	require.NotNil(t, s.locks)
	require.NoError(t, s.WriteCell(context.Background(), "Vasya", feb1, 1))
}
