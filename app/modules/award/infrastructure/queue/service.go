package awardqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/step-bot/app/events"
	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Metrics is the subset of observability.Metrics the queue records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService schedules the daily award run and message retention.
type QueueService interface {
	// EnqueueAwards schedules an immediate medal run for date.
	EnqueueAwards(ctx context.Context, date time.Time) (int64, error)
	// HealthCheck verifies the queue database is reachable.
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Options configures the periodic jobs.
type Options struct {
	AwardsEnabled bool
	RunAtHour     int
	RunAtMinute   int
	Location      *time.Location
	Retention     time.Duration
	// RetentionInterval is how often the message log is pruned.
	RetentionInterval time.Duration
}

// Service runs award and retention jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics Metrics
	opts    Options
}

// NewService creates a River-based queue service. The River schema must
// already be migrated.
func NewService(
	ctx context.Context,
	logger *slog.Logger,
	dsn string,
	metrics Metrics,
	publisher message.Publisher,
	pruner Pruner,
	opts Options,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_award_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing award queue service")

	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RetentionInterval <= 0 {
		opts.RetentionInterval = time.Hour
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewDailyAwardsWorker(ctxLogger, publisher))
	river.AddWorker(workers, NewMessageRetentionWorker(ctxLogger, pruner, opts.Retention))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 5},
			QueueAwards:        {MaxWorkers: 1},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs(opts),
		Logger:       logger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Award queue service initialized successfully",
		attr.Bool("awards_enabled", opts.AwardsEnabled),
	)
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
		opts:    opts,
	}, nil
}

func periodicJobs(opts Options) []*river.PeriodicJob {
	jobs := []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(opts.RetentionInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return MessageRetentionJob{}, nil
			},
			nil,
		),
	}
	if opts.AwardsEnabled {
		jobs = append(jobs, river.NewPeriodicJob(
			DailySchedule{Hour: opts.RunAtHour, Minute: opts.RunAtMinute, Location: opts.Location},
			func() (river.JobArgs, *river.InsertOpts) {
				return dailyAwardsJob(time.Now(), opts.Location), &river.InsertOpts{Queue: QueueAwards}
			},
			nil,
		))
	}
	return jobs
}

func dailyAwardsJob(now time.Time, loc *time.Location) DailyAwardsJob {
	return DailyAwardsJob{Date: awarddomain.TargetDay(now, loc).Format(events.DateLayout)}
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting award queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", time.Since(start))

	s.logger.Info("Award queue service started successfully")
	return nil
}

// Stop stops the River queue service and closes its pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping award queue service")
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", time.Since(start))

	s.logger.Info("Award queue service stopped successfully")
	return nil
}

// EnqueueAwards schedules a medal run for date on the awards queue.
func (s *Service) EnqueueAwards(ctx context.Context, date time.Time) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_awards", "river")

	job := DailyAwardsJob{Date: date.Format(events.DateLayout)}
	res, err := s.client.Insert(ctx, job, &river.InsertOpts{Queue: QueueAwards})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue award job", attr.String("date", job.Date), attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_awards", "river")
		return 0, fmt.Errorf("failed to enqueue award job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_awards", "river")
	s.metrics.RecordOperationDuration(ctx, "enqueue_awards", "river", time.Since(start))

	s.logger.InfoContext(ctx, "Award job enqueued",
		attr.String("date", job.Date),
		attr.Int64("job_id", res.Job.ID),
	)
	return res.Job.ID, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("river database unreachable: %w", err)
	}
	return nil
}
