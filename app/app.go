// Package app wires the modules into a running bot.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/step-bot/app/modules/award"
	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	"github.com/Black-And-White-Club/step-bot/app/modules/grid"
	"github.com/Black-And-White-Club/step-bot/app/modules/report"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/Black-And-White-Club/step-bot/internal/eventbus"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/step-bot/internal/pglock"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/sync/errgroup"
)

// App holds the running bot.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server

	GridModule   *grid.Module
	ReportModule *report.Module
	AwardModule  *award.Module
}

// OpenDB connects bun to Postgres.
func OpenDB(dsn string) *bun.DB {
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(pgdb, pgdialect.New())
}

// NewApp builds every module. Nothing runs until Run.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger
	a := &App{Config: cfg, Observability: obs}

	// 1. Database
	a.DB = OpenDB(cfg.Postgres.DSN)
	if err := a.DB.PingContext(ctx); err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	// 2. Event bus
	eb, err := eventbus.NewEventBus(ctx, eventbus.Config{
		Driver:     cfg.EventBus.Driver,
		NATSURL:    cfg.NATS.URL,
		QueueGroup: cfg.EventBus.QueueGroup,
	}, logger)
	if err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	a.EventBus = eb

	// 3. Message router
	a.Router, err = NewMessageRouter(logger, obs.Registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	httpRouter := NewHTTPRouter(obs, a.healthCheck)

	// 4. Modules
	a.GridModule, err = grid.NewGridModule(ctx, cfg, obs, awarddomain.Symbols(), pglock.New(a.DB, "grid"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create grid module: %w", err)
	}
	a.GridModule.RegisterRoutes(httpRouter)

	a.ReportModule, err = report.NewReportModule(ctx, obs, eb, a.Router, ctx, a.DB, a.GridModule.Syncer)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create report module: %w", err)
	}

	a.AwardModule, err = award.NewAwardModule(ctx, cfg, obs, eb, a.Router, ctx, a.DB,
		a.ReportModule.Repository, a.GridModule.Syncer, a.ReportModule.ReportService, httpRouter)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create award module: %w", err)
	}

	a.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("grid_backend", cfg.Grid.Backend),
		attr.String("eventbus", cfg.EventBus.Driver),
	)
	return a, nil
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Router.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.ReportModule.Run(gctx, nil)
		return nil
	})
	g.Go(func() error {
		a.AwardModule.Run(gctx, nil)
		return nil
	})
	g.Go(func() error {
		logger.InfoContext(gctx, "Starting HTTP server", attr.String("addr", a.HTTPServer.Addr))
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.HTTPServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases everything NewApp opened.
func (a *App) Close() error {
	var errs []error
	if a.AwardModule != nil {
		errs = append(errs, a.AwardModule.Close())
	}
	if a.ReportModule != nil {
		errs = append(errs, a.ReportModule.Close())
	}
	if a.Router != nil {
		errs = append(errs, a.Router.Close())
	}
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func (a *App) healthCheck(ctx context.Context) error {
	if err := a.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.AwardModule != nil && a.AwardModule.QueueService != nil {
		if err := a.AwardModule.QueueService.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}
