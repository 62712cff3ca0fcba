package awardhandlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/step-bot/app/events"
	awardservice "github.com/Black-And-White-Club/step-bot/app/modules/award/application"
	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	"github.com/Black-And-White-Club/step-bot/internal/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// Options configures the award handlers.
type Options struct {
	// Location decides which day "yesterday" is.
	Location *time.Location
	// ReportChatID receives the summary text. Zero disables the chat post.
	ReportChatID int64
}

// AwardHandlers implements the Handlers interface.
type AwardHandlers struct {
	service awardservice.Service
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewAwardHandlers creates a new AwardHandlers instance.
func NewAwardHandlers(
	service awardservice.Service,
	opts Options,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &AwardHandlers{
		service: service,
		opts:    opts,
		logger:  logger,
		tracer:  tracer,
		now:     time.Now,
	}
}

// HandleAwardsRequested runs the medal ranking. An unreadable date is
// dropped; store errors are returned for redelivery.
func (h *AwardHandlers) HandleAwardsRequested(ctx context.Context, payload *events.AwardsRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "AwardHandlers.HandleAwardsRequested")
	defer span.End()

	day := awarddomain.TargetDay(h.now(), h.opts.Location)
	if payload.Date != "" {
		parsed, err := awarddomain.ParseDay(payload.Date)
		if err != nil {
			h.logger.WarnContext(ctx, "Ignoring award request with invalid date",
				slog.String("date", payload.Date),
				slog.String("error", err.Error()),
			)
			return nil, nil
		}
		day = parsed
	}

	run, err := h.service.AssignAwards(ctx, day)
	if err != nil {
		return nil, err
	}

	out := []handlerwrapper.Result{{
		Topic:   events.AwardsPublishedV1,
		Payload: PublishedPayload(run),
	}}
	if run.Summary != "" && h.opts.ReportChatID != 0 {
		out = append(out, handlerwrapper.Result{
			Topic: events.ReplyRequestedV1,
			Payload: &events.ReplyRequestedPayloadV1{
				ChatID: h.opts.ReportChatID,
				Text:   run.Summary,
			},
		})
	}
	return out, nil
}

// PublishedPayload converts a run to its event payload.
func PublishedPayload(run awardservice.AwardRun) *events.AwardsPublishedPayloadV1 {
	awards := make([]events.AwardV1, len(run.Awards))
	for i, a := range run.Awards {
		awards[i] = events.AwardV1{
			Identity: a.Identity,
			Rank:     a.Rank,
			Medal:    string(a.Medal),
			Symbol:   a.Symbol(),
			Steps:    a.Steps,
		}
	}
	return &events.AwardsPublishedPayloadV1{
		Date:               run.Date.Format(events.DateLayout),
		Text:               run.Summary,
		Awards:             awards,
		AnnotationFailures: run.AnnotationFailures,
	}
}
