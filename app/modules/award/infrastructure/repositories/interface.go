package awarddb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for award persistence.
type Repository interface {
	// UpsertAward stores an award keyed by (date, nickname_key).
	UpsertAward(ctx context.Context, db bun.IDB, award *StepAward) error

	// DeleteAwardsExcept removes the awards of date whose key is not in keep.
	DeleteAwardsExcept(ctx context.Context, db bun.IDB, date time.Time, keep []string) (int, error)

	// FindAwards lists the awards of date ordered by rank and key.
	FindAwards(ctx context.Context, db bun.IDB, date time.Time) ([]StepAward, error)
}
