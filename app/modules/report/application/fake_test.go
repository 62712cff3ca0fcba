package reportservice

import (
	"context"
	"sync"
	"time"

	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Report Repo
// ------------------------

// FakeReportRepository provides a programmable stub for reportdb.Repository.
type FakeReportRepository struct {
	mu    sync.Mutex
	trace []string

	UpsertReportFunc          func(ctx context.Context, db bun.IDB, report *reportdb.StepReport) error
	FindReportsFunc           func(ctx context.Context, db bun.IDB, from, to time.Time) ([]reportdb.StepReport, error)
	FindNicknameForSenderFunc func(ctx context.Context, db bun.IDB, senderID int64) (string, error)
	RememberNicknameFunc      func(ctx context.Context, db bun.IDB, senderID int64, nickname, username string) error
	LogMessageFunc            func(ctx context.Context, db bun.IDB, msg *reportdb.ChatMessage) error
	PruneMessagesFunc         func(ctx context.Context, db bun.IDB, before time.Time) (int, error)

	Upserted   []reportdb.StepReport
	Remembered map[int64]string
	Logged     []reportdb.ChatMessage
}

func NewFakeReportRepository() *FakeReportRepository {
	return &FakeReportRepository{
		trace:      []string{},
		Remembered: map[int64]string{},
	}
}

func (f *FakeReportRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeReportRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeReportRepository) UpsertReport(ctx context.Context, db bun.IDB, report *reportdb.StepReport) error {
	f.record("UpsertReport")
	if f.UpsertReportFunc != nil {
		return f.UpsertReportFunc(ctx, db, report)
	}
	f.mu.Lock()
	f.Upserted = append(f.Upserted, *report)
	f.mu.Unlock()
	return nil
}

func (f *FakeReportRepository) FindReports(ctx context.Context, db bun.IDB, from, to time.Time) ([]reportdb.StepReport, error) {
	f.record("FindReports")
	if f.FindReportsFunc != nil {
		return f.FindReportsFunc(ctx, db, from, to)
	}
	return nil, nil
}

func (f *FakeReportRepository) FindNicknameForSender(ctx context.Context, db bun.IDB, senderID int64) (string, error) {
	f.record("FindNicknameForSender")
	if f.FindNicknameForSenderFunc != nil {
		return f.FindNicknameForSenderFunc(ctx, db, senderID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.Remembered[senderID]; ok {
		return n, nil
	}
	return "", reportdb.ErrNotFound
}

func (f *FakeReportRepository) RememberNickname(ctx context.Context, db bun.IDB, senderID int64, nickname, username string) error {
	f.record("RememberNickname")
	if f.RememberNicknameFunc != nil {
		return f.RememberNicknameFunc(ctx, db, senderID, nickname, username)
	}
	f.mu.Lock()
	f.Remembered[senderID] = nickname
	f.mu.Unlock()
	return nil
}

func (f *FakeReportRepository) LogMessage(ctx context.Context, db bun.IDB, msg *reportdb.ChatMessage) error {
	f.record("LogMessage")
	if f.LogMessageFunc != nil {
		return f.LogMessageFunc(ctx, db, msg)
	}
	f.mu.Lock()
	f.Logged = append(f.Logged, *msg)
	f.mu.Unlock()
	return nil
}

func (f *FakeReportRepository) PruneMessages(ctx context.Context, db bun.IDB, before time.Time) (int, error) {
	f.record("PruneMessages")
	if f.PruneMessagesFunc != nil {
		return f.PruneMessagesFunc(ctx, db, before)
	}
	return 0, nil
}

var _ reportdb.Repository = (*FakeReportRepository)(nil)

// ------------------------
// Fake Grid
// ------------------------

type cellWrite struct {
	Identity string
	Date     time.Time
	Steps    int
}

type FakeGrid struct {
	mu            sync.Mutex
	WriteCellFunc func(ctx context.Context, identity string, date time.Time, steps int) error
	Writes        []cellWrite
}

func (f *FakeGrid) WriteCell(ctx context.Context, identity string, date time.Time, steps int) error {
	if f.WriteCellFunc != nil {
		return f.WriteCellFunc(ctx, identity, date, steps)
	}
	f.mu.Lock()
	f.Writes = append(f.Writes, cellWrite{identity, date, steps})
	f.mu.Unlock()
	return nil
}

var _ GridWriter = (*FakeGrid)(nil)
