package grid

import (
	"context"
	"fmt"
	"log/slog"

	gridservice "github.com/Black-And-White-Club/step-bot/app/modules/grid/application"
	gridhandlers "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/handlers"
	gridmemory "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/memory"
	gridsheets "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/sheets"
	gridxlsx "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/xlsx"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/go-chi/chi/v5"
)

// Module represents the grid module.
type Module struct {
	Syncer *gridservice.Syncer
	Store  gridservice.Store
	logger *slog.Logger
}

// NewGridModule builds the configured store and the syncer over it.
// knownSymbols are the award annotations the syncer may replace. locker is
// shared by every process writing the sheet; nil keeps locks in process.
func NewGridModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	knownSymbols []string,
	locker gridservice.Locker,
) (*Module, error) {
	logger := obs.Logger.With(attr.String("module", "grid"))
	logger.InfoContext(ctx, "grid.NewGridModule initializing", attr.String("backend", cfg.Grid.Backend))

	store, err := NewStore(ctx, cfg.Grid)
	if err != nil {
		return nil, err
	}

	syncer := gridservice.NewSyncer(store, cfg.Grid.Timeout, knownSymbols, logger, obs.Metrics, obs.Tracer,
		gridservice.WithLocker(locker))
	return &Module{Syncer: syncer, Store: store, logger: logger}, nil
}

// RegisterRoutes mounts the read-only grid views.
func (m *Module) RegisterRoutes(r chi.Router) {
	h := gridhandlers.NewHTTPHandlers(m.Syncer, m.logger)
	r.Get("/grid/{date}", h.HandleHTTPDay)
}

// NewStore opens the backend selected by cfg.Backend.
func NewStore(ctx context.Context, cfg config.GridConfig) (gridservice.Store, error) {
	switch cfg.Backend {
	case config.GridBackendSheets:
		store, err := gridsheets.NewStore(ctx, cfg.CredentialsPath, gridsheets.Config{
			SpreadsheetID:     cfg.SpreadsheetID,
			Sheet:             cfg.Sheet,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets store: %w", err)
		}
		return store, nil
	case config.GridBackendXLSX:
		return gridxlsx.NewStore(cfg.XLSXPath, cfg.Sheet), nil
	case config.GridBackendMemory:
		return gridmemory.NewStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown grid backend %q", cfg.Backend)
	}
}
