package reporthandlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/step-bot/app/events"
	gridservice "github.com/Black-And-White-Club/step-bot/app/modules/grid/application"
	reportservice "github.com/Black-And-White-Club/step-bot/app/modules/report/application"
	"github.com/Black-And-White-Club/step-bot/internal/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// ReportHandlers implements the Handlers interface.
type ReportHandlers struct {
	service reportservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewReportHandlers creates a new ReportHandlers instance.
func NewReportHandlers(
	service reportservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ReportHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleMessageReceived ingests a chat message. Store and grid failures are
// answered in the chat and acked; anything else is returned for redelivery.
func (h *ReportHandlers) HandleMessageReceived(ctx context.Context, payload *events.MessageReceivedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ReportHandlers.HandleMessageReceived")
	defer span.End()

	result, err := h.service.IngestMessage(ctx, reportservice.IncomingMessage{
		ChatID:    payload.ChatID,
		MessageID: payload.MessageID,
		SenderID:  payload.SenderID,
		Username:  payload.Username,
		Text:      payload.Text,
		SentAt:    payload.SentAt,
	})
	if err != nil && !isStoreFailure(err) {
		return nil, err
	}
	if err != nil {
		h.logger.WarnContext(ctx, "Report could not be saved",
			slog.Int64("chat_id", payload.ChatID),
			slog.Int64("message_id", payload.MessageID),
			slog.String("error", err.Error()),
		)
	}

	text, ok := reportservice.Reply(result, err)
	if !ok {
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: events.ReplyRequestedV1,
		Payload: &events.ReplyRequestedPayloadV1{
			ChatID:           payload.ChatID,
			ReplyToMessageID: payload.MessageID,
			Text:             text,
		},
	}}, nil
}

func isStoreFailure(err error) bool {
	var sf *gridservice.SyncFailure
	return errors.Is(err, reportservice.ErrRecordStore) || errors.As(err, &sf)
}
