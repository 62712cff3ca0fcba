package awardhandlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/step-bot/app/events"
	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	"github.com/Black-And-White-Club/step-bot/internal/httpx"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/go-chi/chi/v5"
)

// Enqueuer schedules an award run.
type Enqueuer interface {
	EnqueueAwards(ctx context.Context, date time.Time) (int64, error)
}

// HTTPHandlers exposes the manual award trigger.
type HTTPHandlers struct {
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewHTTPHandlers creates the award HTTP handlers.
func NewHTTPHandlers(enqueuer Enqueuer, logger *slog.Logger) *HTTPHandlers {
	return &HTTPHandlers{enqueuer: enqueuer, logger: logger}
}

// HandleHTTPRunAwards enqueues a medal run for the {date} URL parameter.
func (h *HTTPHandlers) HandleHTTPRunAwards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, err := awarddomain.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := h.enqueuer.EnqueueAwards(ctx, day)
	if err != nil {
		h.logger.ErrorContext(ctx, "Manual award run failed", attr.Date("date", day), attr.Error(err))
		httpx.WriteError(w, http.StatusServiceUnavailable, "could not enqueue award run")
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, map[string]any{
		"date":   day.Format(events.DateLayout),
		"job_id": jobID,
	})
}
