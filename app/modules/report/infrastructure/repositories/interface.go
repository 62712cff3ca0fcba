package reportdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for report persistence.
// Every method accepts a bun.IDB; a nil db uses the repository's connection.
type Repository interface {
	// UpsertReport stores a report, replacing any earlier one for the same nickname and day.
	UpsertReport(ctx context.Context, db bun.IDB, report *StepReport) error

	// FindReports returns the reports with from <= date < to, ordered by date and nickname key.
	FindReports(ctx context.Context, db bun.IDB, from, to time.Time) ([]StepReport, error)

	// FindNicknameForSender returns the remembered nickname of a sender or ErrNotFound.
	FindNicknameForSender(ctx context.Context, db bun.IDB, senderID int64) (string, error)

	// RememberNickname creates or updates the sender's nickname.
	RememberNickname(ctx context.Context, db bun.IDB, senderID int64, nickname, username string) error

	// LogMessage appends a raw chat message.
	LogMessage(ctx context.Context, db bun.IDB, msg *ChatMessage) error

	// PruneMessages deletes messages received before the cutoff and returns how many were removed.
	PruneMessages(ctx context.Context, db bun.IDB, before time.Time) (int, error)
}
