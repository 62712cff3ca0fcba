package reportrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/step-bot/app/events"
	reporthandlers "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/handlers"
	"github.com/Black-And-White-Club/step-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// ReportRouter handles Watermill handler registration for report events.
type ReportRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
	metrics    observability.Metrics
}

// NewReportRouter creates a new ReportRouter.
func NewReportRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	metrics observability.Metrics,
) *ReportRouter {
	return &ReportRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure sets up the router with handlers.
func (r *ReportRouter) Configure(_ context.Context, handlers reporthandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    observability.Metrics
}

func (r *ReportRouter) registerHandlers(handlers reporthandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	r.logger.Info("Registering report module handlers",
		slog.String("message_received_subject", events.MessageReceivedV1),
	)

	registerHandler(deps, events.MessageReceivedV1, handlers.HandleMessageReceived)

	r.logger.Info("Report module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// Outgoing messages are published to the topic carried in their metadata.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "report." + topic
	wrapped := handlerwrapper.WrapTyped(handlerName, deps.logger, deps.tracer, deps.metrics, handler)

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		func(msg *message.Message) error {
			out, err := wrapped(msg)
			if err != nil {
				return err
			}
			return handlerwrapper.PublishAll(deps.publisher, out)
		},
	)
}

// Close shuts down the router.
func (r *ReportRouter) Close() error {
	return r.router.Close()
}
