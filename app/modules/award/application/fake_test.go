package awardservice

import (
	"context"
	"time"

	awarddb "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/repositories"
	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Award Repo
// ------------------------

type FakeAwardRepository struct {
	trace []string

	UpsertAwardFunc        func(ctx context.Context, db bun.IDB, award *awarddb.StepAward) error
	DeleteAwardsExceptFunc func(ctx context.Context, db bun.IDB, date time.Time, keep []string) (int, error)
	FindAwardsFunc         func(ctx context.Context, db bun.IDB, date time.Time) ([]awarddb.StepAward, error)

	Upserted []awarddb.StepAward
	Kept     []string
}

func NewFakeAwardRepository() *FakeAwardRepository {
	return &FakeAwardRepository{trace: []string{}}
}

func (f *FakeAwardRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeAwardRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeAwardRepository) UpsertAward(ctx context.Context, db bun.IDB, award *awarddb.StepAward) error {
	f.record("UpsertAward")
	if f.UpsertAwardFunc != nil {
		return f.UpsertAwardFunc(ctx, db, award)
	}
	f.Upserted = append(f.Upserted, *award)
	return nil
}

func (f *FakeAwardRepository) DeleteAwardsExcept(ctx context.Context, db bun.IDB, date time.Time, keep []string) (int, error) {
	f.record("DeleteAwardsExcept")
	f.Kept = keep
	if f.DeleteAwardsExceptFunc != nil {
		return f.DeleteAwardsExceptFunc(ctx, db, date, keep)
	}
	return 0, nil
}

func (f *FakeAwardRepository) FindAwards(ctx context.Context, db bun.IDB, date time.Time) ([]awarddb.StepAward, error) {
	f.record("FindAwards")
	if f.FindAwardsFunc != nil {
		return f.FindAwardsFunc(ctx, db, date)
	}
	return nil, nil
}

var _ awarddb.Repository = (*FakeAwardRepository)(nil)

// ------------------------
// Fake Report Reader
// ------------------------

type FakeReportReader struct {
	FindReportsFunc func(ctx context.Context, db bun.IDB, from, to time.Time) ([]reportdb.StepReport, error)
}

func (f *FakeReportReader) FindReports(ctx context.Context, db bun.IDB, from, to time.Time) ([]reportdb.StepReport, error) {
	if f.FindReportsFunc != nil {
		return f.FindReportsFunc(ctx, db, from, to)
	}
	return nil, nil
}

var _ ReportReader = (*FakeReportReader)(nil)
