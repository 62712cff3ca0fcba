package awardhandlers

import (
	"context"
	"time"

	awardservice "github.com/Black-And-White-Club/step-bot/app/modules/award/application"
)

type FakeAwardService struct {
	trace []string
	Dates []time.Time

	AssignAwardsFunc func(ctx context.Context, date time.Time) (awardservice.AwardRun, error)
}

func NewFakeAwardService() *FakeAwardService {
	return &FakeAwardService{trace: []string{}}
}

func (f *FakeAwardService) AssignAwards(ctx context.Context, date time.Time) (awardservice.AwardRun, error) {
	f.trace = append(f.trace, "AssignAwards")
	f.Dates = append(f.Dates, date)
	if f.AssignAwardsFunc != nil {
		return f.AssignAwardsFunc(ctx, date)
	}
	return awardservice.AwardRun{Date: date}, nil
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeAwardService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ awardservice.Service = (*FakeAwardService)(nil)
