package reporthandlers

import (
	"context"

	"github.com/Black-And-White-Club/step-bot/app/events"
	"github.com/Black-And-White-Club/step-bot/internal/handlerwrapper"
)

// Handlers defines the interface for report event handlers.
type Handlers interface {
	// HandleMessageReceived ingests a chat message and answers step reports.
	HandleMessageReceived(ctx context.Context, payload *events.MessageReceivedPayloadV1) ([]handlerwrapper.Result, error)
}
