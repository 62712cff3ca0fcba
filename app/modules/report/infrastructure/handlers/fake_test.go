package reporthandlers

import (
	"context"
	"time"

	reportservice "github.com/Black-And-White-Club/step-bot/app/modules/report/application"
)

// ------------------------
// Fake Report Service
// ------------------------

type FakeReportService struct {
	trace []string

	IngestMessageFunc func(ctx context.Context, msg reportservice.IncomingMessage) (reportservice.IngestResult, error)
	PruneMessagesFunc func(ctx context.Context, retention time.Duration) (int, error)
}

func NewFakeReportService() *FakeReportService {
	return &FakeReportService{trace: []string{}}
}

func (f *FakeReportService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeReportService) IngestMessage(ctx context.Context, msg reportservice.IncomingMessage) (reportservice.IngestResult, error) {
	f.record("IngestMessage")
	if f.IngestMessageFunc != nil {
		return f.IngestMessageFunc(ctx, msg)
	}
	return reportservice.IngestResult{}, nil
}

func (f *FakeReportService) PruneMessages(ctx context.Context, retention time.Duration) (int, error) {
	f.record("PruneMessages")
	if f.PruneMessagesFunc != nil {
		return f.PruneMessagesFunc(ctx, retention)
	}
	return 0, nil
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeReportService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ reportservice.Service = (*FakeReportService)(nil)
