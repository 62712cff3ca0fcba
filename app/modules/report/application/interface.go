package reportservice

import (
	"context"
	"time"

	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
	"github.com/Black-And-White-Club/step-bot/internal/results"
)

// IncomingMessage is a chat message handed to the service by the transport.
type IncomingMessage struct {
	ChatID    int64
	MessageID int64
	SenderID  int64
	Username  string
	Text      string
	SentAt    time.Time
}

// IngestSuccess describes a handled message. Ignored is set for messages
// without the report marker.
type IngestSuccess struct {
	Ignored bool
	Report  reportdomain.Report
}

// IngestResult carries either a stored report or a parse failure.
type IngestResult = results.OperationResult[IngestSuccess, error]

// Service defines the interface for the ReportService.
type Service interface {
	// IngestMessage logs the message and, when it is a step report, stores it
	// and writes it to the grid.
	IngestMessage(ctx context.Context, msg IncomingMessage) (IngestResult, error)

	// PruneMessages removes logged messages older than the retention.
	PruneMessages(ctx context.Context, retention time.Duration) (int, error)
}

// GridWriter is the part of the grid the service writes reports to.
type GridWriter interface {
	WriteCell(ctx context.Context, identity string, date time.Time, steps int) error
}
