package gridservice

import (
	"context"
	"time"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
)

// Store is the external spreadsheet the grid lives in.
//
// Values returns the sheet contents row by row with trailing empty cells
// and rows omitted. WriteCells applies one batch of cell writes; backends
// send a batch as a single request.
type Store interface {
	Values(ctx context.Context) ([][]string, error)
	WriteCells(ctx context.Context, cells []griddomain.CellWrite) error
}

// Grid is the step grid as seen by the report and award modules.
type Grid interface {
	EnsureRow(ctx context.Context, identity string) (int, error)
	EnsureColumn(ctx context.Context, date time.Time) (int, error)
	WriteCell(ctx context.Context, identity string, date time.Time, steps int) error
	AnnotateCell(ctx context.Context, identity string, date time.Time, symbol string) error
	ReadCell(ctx context.Context, identity string, date time.Time) (string, bool, error)
	Snapshot(ctx context.Context) ([][]string, error)
}

// Locker hands out exclusive locks per key. The release func must be safe
// to call more than once. Syncers writing to the same Store from several
// processes need a Locker those processes share.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
