package report

import (
	"context"
	"fmt"
	"sync"

	reportservice "github.com/Black-And-White-Club/step-bot/app/modules/report/application"
	reporthandlers "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/handlers"
	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	reportrouter "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/router"
	"github.com/Black-And-White-Club/step-bot/internal/eventbus"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the report module.
type Module struct {
	ReportService reportservice.Service
	Repository    reportdb.Repository
	ReportRouter  *reportrouter.ReportRouter
	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewReportModule creates and initializes a new report module.
func NewReportModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	grid reportservice.GridWriter,
) (*Module, error) {
	logger := obs.Logger.With(attr.String("module", "report"))
	tracer := obs.Tracer

	logger.InfoContext(ctx, "report.NewReportModule initializing")

	// 1. Initialize Repository
	repo := reportdb.NewRepository(db)

	// 2. Initialize Service
	service := reportservice.NewReportService(repo, grid, logger, obs.Metrics, tracer, db)

	// 3. Initialize Handlers
	handlers := reporthandlers.NewReportHandlers(service, logger, tracer)

	// 4. Initialize Router
	reportRouter := reportrouter.NewReportRouter(logger, router, eventBus, eventBus, tracer, obs.Metrics)

	// 5. Configure the router with handlers
	if err := reportRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure report router: %w", err)
	}

	return &Module{
		ReportService: service,
		Repository:    repo,
		ReportRouter:  reportRouter,
		observability: obs,
	}, nil
}

// Run starts the report module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting report module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Report module goroutine stopped")
}

// Close shuts down the report module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping report module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.ReportRouter != nil {
		if err := m.ReportRouter.Close(); err != nil {
			logger.Error("Error closing ReportRouter from module", attr.Error(err))
			return fmt.Errorf("error closing ReportRouter: %w", err)
		}
	}

	logger.Info("Report module stopped")
	return nil
}
