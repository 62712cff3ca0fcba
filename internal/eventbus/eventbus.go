// Package eventbus connects the modules to the message transport.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

const (
	DriverNATS      = "nats"
	DriverGoChannel = "gochannel"
)

// EventBus publishes and subscribes to topics.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects and configures the transport.
type Config struct {
	Driver     string
	NATSURL    string
	QueueGroup string
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
	shared     bool
}

// NewEventBus returns a NATS backed bus, or an in-process bus when the
// gochannel driver is selected.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch cfg.Driver {
	case DriverGoChannel, "":
		logger.InfoContext(ctx, "Using in-process event bus")
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, wmLogger)
		return &eventBus{publisher: ch, subscriber: ch, logger: logger, shared: true}, nil

	case DriverNATS:
		return newNATSEventBus(ctx, cfg, logger, wmLogger)

	default:
		return nil, fmt.Errorf("unknown event bus driver %q", cfg.Driver)
	}
}

func newNATSEventBus(ctx context.Context, cfg Config, logger *slog.Logger, wmLogger watermill.LoggerAdapter) (EventBus, error) {
	logger.InfoContext(ctx, "Connecting event bus to NATS", slog.String("url", cfg.NATSURL))

	marshaler := &wmnats.NATSMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(10 * time.Second),
		nc.ReconnectWait(time.Second),
	}
	// Core NATS only: topic names contain dots, which JetStream rejects as
	// stream names under auto provisioning.
	jsConfig := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         cfg.NATSURL,
		Marshaler:   marshaler,
		NatsOptions: options,
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create NATS publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	queueGroup := cfg.QueueGroup
	if queueGroup == "" {
		queueGroup = "step-bot"
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: queueGroup,
		SubscribersCount: 1,
		CloseTimeout:     30 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		Unmarshaler:      marshaler,
		NatsOptions:      options,
		JetStream:        jsConfig,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		logger.ErrorContext(ctx, "Failed to create NATS subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &eventBus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
	}
	eb.logger.Debug("Publishing messages", slog.String("topic", topic), slog.Int("count", len(messages)))
	return eb.publisher.Publish(topic, messages...)
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))
	return eb.subscriber.Subscribe(ctx, topic)
}

// Close closes the publisher and subscriber.
func (eb *eventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		eb.logger.Error("Error closing publisher", slog.Any("error", err))
		return err
	}
	if eb.shared {
		return nil
	}
	if err := eb.subscriber.Close(); err != nil {
		eb.logger.Error("Error closing subscriber", slog.Any("error", err))
		return err
	}
	return nil
}
