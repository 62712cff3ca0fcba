// Package gridhandlers serves read-only views of the step grid.
package gridhandlers

import (
	"context"
	"log/slog"
	"net/http"

	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
	"github.com/Black-And-White-Club/step-bot/internal/httpx"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/go-chi/chi/v5"
)

// Snapshotter reads the whole grid.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([][]string, error)
}

// HTTPHandlers exposes grid reads.
type HTTPHandlers struct {
	grid   Snapshotter
	logger *slog.Logger
}

// NewHTTPHandlers creates the grid HTTP handlers.
func NewHTTPHandlers(grid Snapshotter, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{grid: grid, logger: logger}
}

// HandleHTTPDay returns the filled cells of the {date} column.
func (h *HTTPHandlers) HandleHTTPDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, err := awarddomain.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	values, err := h.grid.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Grid read failed", attr.Date("date", day), attr.Error(err))
		httpx.WriteError(w, http.StatusBadGateway, "grid unavailable")
		return
	}

	header := griddomain.FormatDate(day)
	entries, ok := griddomain.ColumnEntries(values, header)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "no column for "+header)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"date":    header,
		"entries": entries,
	})
}
