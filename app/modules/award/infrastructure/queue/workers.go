package awardqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/step-bot/app/events"
	"github.com/Black-And-White-Club/step-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// Pruner removes old chat messages.
type Pruner interface {
	PruneMessages(ctx context.Context, retention time.Duration) (int, error)
}

// DailyAwardsWorker publishes the award request for the job's day.
type DailyAwardsWorker struct {
	river.WorkerDefaults[DailyAwardsJob]
	logger    *slog.Logger
	publisher message.Publisher
}

// NewDailyAwardsWorker creates a DailyAwardsWorker.
func NewDailyAwardsWorker(logger *slog.Logger, publisher message.Publisher) *DailyAwardsWorker {
	return &DailyAwardsWorker{logger: logger, publisher: publisher}
}

func (w *DailyAwardsWorker) Work(ctx context.Context, job *river.Job[DailyAwardsJob]) error {
	w.logger.InfoContext(ctx, "Requesting daily awards",
		attr.String("date", job.Args.Date),
		attr.Int64("job_id", job.ID),
	)

	msg, err := handlerwrapper.NewMessage(ctx, handlerwrapper.Result{
		Topic:   events.AwardsRequestedV1,
		Payload: &events.AwardsRequestedPayloadV1{Date: job.Args.Date},
	})
	if err != nil {
		return fmt.Errorf("failed to build award request: %w", err)
	}
	return handlerwrapper.PublishAll(w.publisher, []*message.Message{msg})
}

// MessageRetentionWorker prunes chat messages older than the retention.
type MessageRetentionWorker struct {
	river.WorkerDefaults[MessageRetentionJob]
	logger    *slog.Logger
	pruner    Pruner
	retention time.Duration
}

// NewMessageRetentionWorker creates a MessageRetentionWorker.
func NewMessageRetentionWorker(logger *slog.Logger, pruner Pruner, retention time.Duration) *MessageRetentionWorker {
	return &MessageRetentionWorker{logger: logger, pruner: pruner, retention: retention}
}

func (w *MessageRetentionWorker) Work(ctx context.Context, job *river.Job[MessageRetentionJob]) error {
	n, err := w.pruner.PruneMessages(ctx, w.retention)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Pruned chat messages",
		attr.Int("deleted", n),
		attr.Duration("retention", w.retention),
	)
	return nil
}
