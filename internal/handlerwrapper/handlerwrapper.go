// Package handlerwrapper adapts typed event handlers to watermill.
//
// A typed handler receives the decoded payload and returns Results. The
// wrapper owns decoding, tracing, logging, metrics and encoding of the
// outgoing messages, which carry their destination in the "topic" metadata
// key for the router to publish.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TopicMetadataKey holds the destination topic of an outgoing message.
const TopicMetadataKey = "topic"

// ErrNoTopic is returned when an outgoing message has no destination.
var ErrNoTopic = errors.New("outgoing message has no topic")

// Result is one message a handler wants published.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTyped decodes the incoming JSON payload into T, runs handler and
// encodes its results.
func WrapTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.Metrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		ctx := attr.WithCorrelationID(msg.Context(), correlationID)

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message_id", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		metrics.RecordOperationAttempt(ctx, handlerName, "handler")
		start := time.Now()
		defer func() {
			metrics.RecordOperationDuration(ctx, handlerName, "handler", time.Since(start))
		}()

		logger.DebugContext(ctx, handlerName+" triggered",
			attr.CorrelationIDFromMsg(msg),
			attr.String("message_id", msg.UUID),
		)

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			// A payload that cannot be decoded will never succeed; ack it.
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.CorrelationIDFromMsg(msg),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			metrics.RecordOperationFailure(ctx, handlerName, "handler")
			span.RecordError(err)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Error in "+handlerName,
				attr.CorrelationIDFromMsg(msg),
				attr.Error(err),
			)
			metrics.RecordOperationFailure(ctx, handlerName, "handler")
			span.RecordError(err)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := newMessage(r, correlationID)
			if err != nil {
				metrics.RecordOperationFailure(ctx, handlerName, "handler")
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		metrics.RecordOperationSuccess(ctx, handlerName, "handler")
		return out, nil
	}
}

func newMessage(r Result, correlationID string) (*message.Message, error) {
	if r.Topic == "" {
		return nil, ErrNoTopic
	}
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", r.Topic, err)
	}
	m := message.NewMessage(uuid.New().String(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(TopicMetadataKey, r.Topic)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, m)
	}
	return m, nil
}

// NewMessage encodes a Result outside of a handler, for jobs and HTTP.
func NewMessage(ctx context.Context, r Result) (*message.Message, error) {
	m, err := newMessage(r, attr.CorrelationID(ctx))
	if err != nil {
		return nil, err
	}
	if middleware.MessageCorrelationID(m) == "" {
		middleware.SetCorrelationID(uuid.NewString(), m)
	}
	return m, nil
}

// PublishAll publishes each message to the topic in its metadata.
func PublishAll(publisher message.Publisher, messages []*message.Message) error {
	for _, m := range messages {
		topic := m.Metadata.Get(TopicMetadataKey)
		if topic == "" {
			return fmt.Errorf("message %s: %w", m.UUID, ErrNoTopic)
		}
		if err := publisher.Publish(topic, m); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", topic, err)
		}
	}
	return nil
}
