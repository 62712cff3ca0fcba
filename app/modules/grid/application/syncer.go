package gridservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
	"github.com/Black-And-White-Club/step-bot/internal/keylock"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	layoutLockKey  = "layout"
	defaultTimeout = 10 * time.Second
)

// Syncer reconciles step writes and award annotations against a Store.
//
// Rows and columns are only ever appended, so an index resolved from one
// snapshot stays valid for later writes. Writes to the same identity and
// date are serialized, and creating rows or columns additionally takes a
// layout lock and re-reads the sheet so two writers cannot append the same
// row twice or both claim the next free row. The locks are per process
// unless WithLocker supplies a shared one.
type Syncer struct {
	store   Store
	timeout time.Duration
	known   []string
	locks   Locker
	logger  *slog.Logger
	metrics observability.Metrics
	tracer  trace.Tracer
}

var _ Grid = (*Syncer)(nil)

// Option configures a Syncer.
type Option func(*Syncer)

// WithLocker replaces the in-process locks. Use a shared Locker when more
// than one process writes to the same sheet.
func WithLocker(l Locker) Option {
	return func(s *Syncer) {
		if l != nil {
			s.locks = l
		}
	}
}

// NewSyncer creates a Syncer. knownSymbols are the annotations AnnotateCell
// may replace; timeout bounds each store call.
func NewSyncer(
	store Store,
	timeout time.Duration,
	knownSymbols []string,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	opts ...Option,
) *Syncer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s := &Syncer{
		store:   store,
		timeout: timeout,
		known:   append([]string(nil), knownSymbols...),
		locks:   keylock.New(),
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cellKey(identity string, date time.Time) string {
	return griddomain.NormalizeKey(identity) + "|" + griddomain.FormatDate(date)
}

// EnsureRow returns the row of identity, appending it when missing.
func (s *Syncer) EnsureRow(ctx context.Context, identity string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "Syncer.EnsureRow", trace.WithAttributes(attribute.String("identity", identity)))
	defer span.End()

	unlock, err := s.locks.Lock(ctx, layoutLockKey)
	if err != nil {
		return -1, s.fail(ctx, &SyncFailure{Op: OpEnsure, Identity: identity, Row: -1, Col: -1, Err: err})
	}
	defer unlock()

	values, err := s.values(ctx)
	if err != nil {
		return -1, s.fail(ctx, &SyncFailure{Op: OpEnsure, Identity: identity, Row: -1, Col: -1, Err: err})
	}
	if row, ok := griddomain.FindRow(values, identity); ok {
		return row, nil
	}

	row := griddomain.NextRow(values)
	cells := s.headerCells(values)
	cells = append(cells, griddomain.CellWrite{Row: row, Col: griddomain.LabelColumn, Value: identity})
	if err := s.write(ctx, cells); err != nil {
		return -1, s.fail(ctx, &SyncFailure{Op: OpEnsure, Identity: identity, Row: row, Col: griddomain.LabelColumn, Err: err})
	}

	s.logger.InfoContext(ctx, "Appended grid row", attr.Identity(identity), attr.Int("row", row))
	return row, nil
}

// EnsureColumn returns the column of date, appending it when missing.
func (s *Syncer) EnsureColumn(ctx context.Context, date time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "Syncer.EnsureColumn", trace.WithAttributes(attribute.String("date", griddomain.FormatDate(date))))
	defer span.End()

	unlock, err := s.locks.Lock(ctx, layoutLockKey)
	if err != nil {
		return -1, s.fail(ctx, &SyncFailure{Op: OpEnsure, Date: date, Row: -1, Col: -1, Err: err})
	}
	defer unlock()

	values, err := s.values(ctx)
	if err != nil {
		return -1, s.fail(ctx, &SyncFailure{Op: OpEnsure, Date: date, Row: -1, Col: -1, Err: err})
	}
	header := griddomain.FormatDate(date)
	if col, ok := griddomain.FindColumn(values, header); ok {
		return col, nil
	}

	col := griddomain.NextColumn(values)
	cells := s.headerCells(values)
	cells = append(cells, griddomain.CellWrite{Row: griddomain.HeaderRow, Col: col, Value: header})
	if err := s.write(ctx, cells); err != nil {
		return -1, s.fail(ctx, &SyncFailure{Op: OpEnsure, Date: date, Row: griddomain.HeaderRow, Col: col, Err: err})
	}

	s.logger.InfoContext(ctx, "Appended grid column", attr.Date("date", date), attr.Int("col", col))
	return col, nil
}

// WriteCell stores the plain step count for identity on date, replacing
// any earlier value or annotation. A missing row or column is created in
// the same batch as the value.
func (s *Syncer) WriteCell(ctx context.Context, identity string, date time.Time, steps int) error {
	ctx, span := s.tracer.Start(ctx, "Syncer.WriteCell", trace.WithAttributes(
		attribute.String("identity", identity),
		attribute.String("date", griddomain.FormatDate(date)),
	))
	defer span.End()

	return s.writeValue(ctx, OpWrite, identity, date, strconv.Itoa(steps))
}

func (s *Syncer) writeValue(ctx context.Context, op, identity string, date time.Time, value string) error {
	unlock, err := s.locks.Lock(ctx, cellKey(identity, date))
	if err != nil {
		return s.fail(ctx, &SyncFailure{Op: op, Identity: identity, Date: date, Row: -1, Col: -1, Err: err})
	}
	defer unlock()

	values, err := s.values(ctx)
	if err != nil {
		return s.fail(ctx, &SyncFailure{Op: op, Identity: identity, Date: date, Row: -1, Col: -1, Err: err})
	}

	header := griddomain.FormatDate(date)
	row, rowOK := griddomain.FindRow(values, identity)
	col, colOK := griddomain.FindColumn(values, header)
	if rowOK && colOK {
		if err := s.write(ctx, []griddomain.CellWrite{{Row: row, Col: col, Value: value}}); err != nil {
			return s.fail(ctx, &SyncFailure{Op: op, Identity: identity, Date: date, Row: row, Col: col, Err: err})
		}
		return nil
	}

	unlockLayout, err := s.locks.Lock(ctx, layoutLockKey)
	if err != nil {
		return s.fail(ctx, &SyncFailure{Op: op, Identity: identity, Date: date, Row: -1, Col: -1, Err: err})
	}
	defer unlockLayout()

	// Another writer may have appended the row or column meanwhile.
	values, err = s.values(ctx)
	if err != nil {
		return s.fail(ctx, &SyncFailure{Op: op, Identity: identity, Date: date, Row: -1, Col: -1, Err: err})
	}

	cells := s.headerCells(values)
	row, rowOK = griddomain.FindRow(values, identity)
	if !rowOK {
		row = griddomain.NextRow(values)
		cells = append(cells, griddomain.CellWrite{Row: row, Col: griddomain.LabelColumn, Value: identity})
	}
	col, colOK = griddomain.FindColumn(values, header)
	if !colOK {
		col = griddomain.NextColumn(values)
		cells = append(cells, griddomain.CellWrite{Row: griddomain.HeaderRow, Col: col, Value: header})
	}
	cells = append(cells, griddomain.CellWrite{Row: row, Col: col, Value: value})

	if err := s.write(ctx, cells); err != nil {
		return s.fail(ctx, &SyncFailure{Op: op, Identity: identity, Date: date, Row: row, Col: col, Err: err})
	}

	s.logger.InfoContext(ctx, "Extended grid for cell write",
		attr.Identity(identity),
		attr.Date("date", date),
		attr.Bool("new_row", !rowOK),
		attr.Bool("new_column", !colOK),
	)
	return nil
}

// AnnotateCell replaces the award symbol on an existing cell. An empty
// symbol clears it. The cell is only written when its value changes, so
// repeating a call is a no-op. Returns ErrCellNotFound when there is no
// value to annotate.
func (s *Syncer) AnnotateCell(ctx context.Context, identity string, date time.Time, symbol string) error {
	ctx, span := s.tracer.Start(ctx, "Syncer.AnnotateCell", trace.WithAttributes(
		attribute.String("identity", identity),
		attribute.String("date", griddomain.FormatDate(date)),
		attribute.String("symbol", symbol),
	))
	defer span.End()

	unlock, err := s.locks.Lock(ctx, cellKey(identity, date))
	if err != nil {
		return s.fail(ctx, &SyncFailure{Op: OpAnnotate, Identity: identity, Date: date, Row: -1, Col: -1, Err: err})
	}
	defer unlock()

	values, err := s.values(ctx)
	if err != nil {
		return s.fail(ctx, &SyncFailure{Op: OpAnnotate, Identity: identity, Date: date, Row: -1, Col: -1, Err: err})
	}

	row, col, current, ok := locate(values, identity, date)
	if !ok || current == "" {
		return fmt.Errorf("%w: %s@%s", ErrCellNotFound, identity, griddomain.FormatDate(date))
	}

	next := griddomain.Annotate(current, symbol, s.known)
	if next == current {
		return nil
	}
	if err := s.write(ctx, []griddomain.CellWrite{{Row: row, Col: col, Value: next}}); err != nil {
		return s.fail(ctx, &SyncFailure{Op: OpAnnotate, Identity: identity, Date: date, Row: row, Col: col, Err: err})
	}
	return nil
}

// ReadCell returns the cell value for identity on date.
func (s *Syncer) ReadCell(ctx context.Context, identity string, date time.Time) (string, bool, error) {
	values, err := s.values(ctx)
	if err != nil {
		return "", false, s.fail(ctx, &SyncFailure{Op: OpRead, Identity: identity, Date: date, Row: -1, Col: -1, Err: err})
	}
	_, _, value, ok := locate(values, identity, date)
	return value, ok, nil
}

// Snapshot returns the whole grid.
func (s *Syncer) Snapshot(ctx context.Context) ([][]string, error) {
	values, err := s.values(ctx)
	if err != nil {
		return nil, s.fail(ctx, &SyncFailure{Op: OpRead, Row: -1, Col: -1, Err: err})
	}
	return values, nil
}

func locate(values [][]string, identity string, date time.Time) (row, col int, value string, ok bool) {
	row, rowOK := griddomain.FindRow(values, identity)
	col, colOK := griddomain.FindColumn(values, griddomain.FormatDate(date))
	if !rowOK || !colOK {
		return -1, -1, "", false
	}
	return row, col, griddomain.Cell(values, row, col), true
}

func (s *Syncer) headerCells(values [][]string) []griddomain.CellWrite {
	if !griddomain.NeedsHeader(values) {
		return nil
	}
	return []griddomain.CellWrite{{Row: griddomain.HeaderRow, Col: griddomain.LabelColumn, Value: griddomain.HeaderLabel}}
}

func (s *Syncer) values(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Values(ctx)
}

func (s *Syncer) write(ctx context.Context, cells []griddomain.CellWrite) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.WriteCells(ctx, cells)
}

func (s *Syncer) fail(ctx context.Context, f *SyncFailure) error {
	s.metrics.RecordSyncFailure(ctx, f.Op)
	level := slog.LevelError
	if errors.Is(f.Err, context.Canceled) {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "Grid sync failed",
		attr.String("op", f.Op),
		attr.Identity(f.Identity),
		attr.Int("row", f.Row),
		attr.Int("col", f.Col),
		attr.Error(f.Err),
	)
	trace.SpanFromContext(ctx).RecordError(f)
	return f
}
