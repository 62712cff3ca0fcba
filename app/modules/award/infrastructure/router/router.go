package awardrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/step-bot/app/events"
	awardhandlers "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/handlers"
	"github.com/Black-And-White-Club/step-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// AwardRouter handles Watermill handler registration for award events.
type AwardRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
	metrics    observability.Metrics
}

// NewAwardRouter creates a new AwardRouter.
func NewAwardRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	metrics observability.Metrics,
) *AwardRouter {
	return &AwardRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure sets up the router with handlers.
func (r *AwardRouter) Configure(_ context.Context, handlers awardhandlers.Handlers) error {
	r.logger.Info("Registering award module handlers",
		slog.String("awards_requested_subject", events.AwardsRequestedV1),
	)

	r.registerHandler(events.AwardsRequestedV1, handlerwrapper.WrapTyped(
		"award."+events.AwardsRequestedV1,
		r.logger,
		r.tracer,
		r.metrics,
		handlers.HandleAwardsRequested,
	))

	r.logger.Info("Award module handlers registered successfully")
	return nil
}

func (r *AwardRouter) registerHandler(topic string, handler message.HandlerFunc) {
	r.router.AddNoPublisherHandler(
		"award."+topic,
		topic,
		r.subscriber,
		func(msg *message.Message) error {
			out, err := handler(msg)
			if err != nil {
				return err
			}
			return handlerwrapper.PublishAll(r.publisher, out)
		},
	)
}

// Close shuts down the router.
func (r *AwardRouter) Close() error {
	return r.router.Close()
}
