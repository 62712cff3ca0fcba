package awarddb

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new award repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// UpsertAward stores an award.
func (r *Impl) UpsertAward(ctx context.Context, db bun.IDB, award *StepAward) error {
	db = r.resolveDB(db)
	award.AwardedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(award).
		On("CONFLICT (date, nickname_key) DO UPDATE").
		Set("nickname = EXCLUDED.nickname").
		Set("rank = EXCLUDED.rank").
		Set("medal = EXCLUDED.medal").
		Set("symbol = EXCLUDED.symbol").
		Set("steps = EXCLUDED.steps").
		Set("awarded_at = EXCLUDED.awarded_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("awarddb.UpsertAward: %w", err)
	}
	return nil
}

// DeleteAwardsExcept removes stale awards of date.
func (r *Impl) DeleteAwardsExcept(ctx context.Context, db bun.IDB, date time.Time, keep []string) (int, error) {
	db = r.resolveDB(db)
	q := db.NewDelete().
		Model((*StepAward)(nil)).
		Where("date = ?", date.UTC().Format(time.DateOnly))
	if len(keep) > 0 {
		q = q.Where("nickname_key NOT IN (?)", bun.In(keep))
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("awarddb.DeleteAwardsExcept: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("awarddb.DeleteAwardsExcept: rows affected: %w", err)
	}
	return int(n), nil
}

// FindAwards lists the awards of date.
func (r *Impl) FindAwards(ctx context.Context, db bun.IDB, date time.Time) ([]StepAward, error) {
	db = r.resolveDB(db)
	var awards []StepAward
	err := db.NewSelect().
		Model(&awards).
		Where("date = ?", date.UTC().Format(time.DateOnly)).
		OrderExpr("rank ASC, nickname_key ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("awarddb.FindAwards: %w", err)
	}
	return awards, nil
}
