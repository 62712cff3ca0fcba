package award

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	awardservice "github.com/Black-And-White-Club/step-bot/app/modules/award/application"
	awardhandlers "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/handlers"
	awardqueue "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/queue"
	awarddb "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/repositories"
	awardrouter "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/router"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/Black-And-White-Club/step-bot/internal/eventbus"
	"github.com/Black-And-White-Club/step-bot/internal/httpx"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the award module.
type Module struct {
	AwardService awardservice.Service
	Repository   awarddb.Repository
	AwardRouter  *awardrouter.AwardRouter
	QueueService *awardqueue.Service
	cancelFunc   context.CancelFunc
	logger       *slog.Logger
}

// NewAwardModule creates and initializes a new award module. When
// httpRouter is non-nil the manual trigger is mounted on it.
func NewAwardModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	reports awardservice.ReportReader,
	grid awardservice.Annotator,
	pruner awardqueue.Pruner,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger.With(attr.String("module", "award"))
	tracer := obs.Tracer
	loc := cfg.AwardLocation()

	logger.InfoContext(ctx, "award.NewAwardModule initializing", attr.String("timezone", loc.String()))

	// 1. Initialize Repository
	repo := awarddb.NewRepository(db)

	// 2. Initialize Service
	service := awardservice.NewAwardService(repo, reports, grid, logger, obs.Metrics, tracer, db)

	// 3. Initialize Queue Service
	hour, minute, err := config.ParseClock(cfg.Awards.RunAt)
	if err != nil {
		return nil, fmt.Errorf("invalid award run time: %w", err)
	}
	queueService, err := awardqueue.NewService(ctx, logger, cfg.Postgres.DSN, obs.Metrics, eventBus, pruner, awardqueue.Options{
		AwardsEnabled: cfg.Awards.Enabled,
		RunAtHour:     hour,
		RunAtMinute:   minute,
		Location:      loc,
		Retention:     cfg.Messages.Retention,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create award queue service: %w", err)
	}

	// 4. Initialize Handlers
	handlers := awardhandlers.NewAwardHandlers(service, awardhandlers.Options{
		Location:     loc,
		ReportChatID: cfg.Awards.ReportChatID,
	}, logger, tracer)

	// 5. Initialize Router
	awardRouter := awardrouter.NewAwardRouter(logger, router, eventBus, eventBus, tracer, obs.Metrics)

	// 6. Configure the router with handlers
	if err := awardRouter.Configure(routerCtx, handlers); err != nil {
		queueService.Stop(ctx)
		return nil, fmt.Errorf("failed to configure award router: %w", err)
	}

	// 7. Register HTTP routes
	if httpRouter != nil {
		httpHandlers := awardhandlers.NewHTTPHandlers(queueService, logger)
		limiter := httpx.NewClientLimiter(1, 3)
		httpRouter.With(httpx.RateLimit(limiter)).Post("/awards/{date}", httpHandlers.HandleHTTPRunAwards)
	}

	return &Module{
		AwardService: service,
		Repository:   repo,
		AwardRouter:  awardRouter,
		QueueService: queueService,
		logger:       logger,
	}, nil
}

// Run starts the award queue and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting award module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start award queue", attr.Error(err))
			return
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Award module goroutine stopped")
}

// Close shuts down the award module.
func (m *Module) Close() error {
	m.logger.Info("Stopping award module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.QueueService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.QueueService.Stop(ctx); err != nil {
			m.logger.Error("Error stopping award queue", attr.Error(err))
		}
	}

	if m.AwardRouter != nil {
		if err := m.AwardRouter.Close(); err != nil {
			m.logger.Error("Error closing AwardRouter from module", attr.Error(err))
			return fmt.Errorf("error closing AwardRouter: %w", err)
		}
	}

	m.logger.Info("Award module stopped")
	return nil
}
