package gridservice

import (
	"errors"
	"fmt"
	"time"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
)

// ErrCellNotFound is returned by AnnotateCell when the grid has no value
// for the identity and date.
var ErrCellNotFound = errors.New("grid cell not found")

// Grid operations, as reported in SyncFailure.Op.
const (
	OpRead     = "read"
	OpEnsure   = "ensure"
	OpWrite    = "write_cell"
	OpAnnotate = "annotate_cell"
)

// SyncFailure is a store error or timeout together with the operation and
// the coordinates that were being touched. Row and Col are zero based and
// -1 when not yet resolved.
type SyncFailure struct {
	Op       string
	Identity string
	Date     time.Time
	Row      int
	Col      int
	Err      error
}

func (e *SyncFailure) Error() string {
	target := e.Identity
	if !e.Date.IsZero() {
		target += "@" + griddomain.FormatDate(e.Date)
	}
	return fmt.Sprintf("grid %s %s (row %d, col %d): %v", e.Op, target, e.Row, e.Col, e.Err)
}

func (e *SyncFailure) Unwrap() error { return e.Err }
