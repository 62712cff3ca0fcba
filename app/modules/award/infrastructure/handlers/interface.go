package awardhandlers

import (
	"context"

	"github.com/Black-And-White-Club/step-bot/app/events"
	"github.com/Black-And-White-Club/step-bot/internal/handlerwrapper"
)

// Handlers defines the interface for award event handlers.
type Handlers interface {
	// HandleAwardsRequested runs the medal ranking for a day and publishes the summary.
	HandleAwardsRequested(ctx context.Context, payload *events.AwardsRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
