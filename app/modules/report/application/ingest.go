package reportservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	"github.com/Black-And-White-Club/step-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/step-bot/internal/results"
	"github.com/uptrace/bun"
)

// IngestMessage handles one inbound chat message.
//
// The record store is written before the grid. A grid failure after a
// successful store write is returned as is; the stored report is kept.
func (s *ReportService) IngestMessage(ctx context.Context, msg IncomingMessage) (IngestResult, error) {
	return withTelemetry(s, ctx, "IngestMessage", strconv.FormatInt(msg.SenderID, 10), func(ctx context.Context) (IngestResult, error) {
		s.logMessage(ctx, msg)

		if !reportdomain.HasMarker(msg.Text) {
			return results.SuccessResult[IngestSuccess, error](IngestSuccess{Ignored: true}), nil
		}

		now := msg.SentAt
		if now.IsZero() {
			now = s.now()
		}
		ext := reportdomain.Extract(msg.Text, now)

		// A tag names the runner outright; only untagged reports need memory.
		var remembered string
		if ext.Identity == "" {
			var err error
			remembered, err = s.rememberedNickname(ctx, msg.SenderID)
			if err != nil {
				return IngestResult{}, err
			}
		}

		report, err := ext.Report(remembered)
		if err != nil {
			var pe *reportdomain.ParseError
			if errors.As(err, &pe) {
				s.metrics.RecordParseFailure(ctx, pe.ReasonLabel())
			}
			return results.FailureResult[IngestSuccess, error](err), nil
		}
		report.SenderID = msg.SenderID

		unlock, err := s.locks.Lock(ctx, report.Key+"|"+report.Date.Format(time.DateOnly))
		if err != nil {
			return IngestResult{}, err
		}
		defer unlock()

		storeTx := func(ctx context.Context, db bun.IDB) (IngestResult, error) {
			return s.storeReport(ctx, db, report, ext.Identity != "", msg.Username)
		}
		result, err := runInTx(s, ctx, storeTx)
		if err != nil {
			return IngestResult{}, fmt.Errorf("%w: %w", ErrRecordStore, err)
		}

		if err := s.grid.WriteCell(ctx, report.Identity, report.Date, report.Steps); err != nil {
			return IngestResult{}, err
		}

		s.metrics.RecordReportIngested(ctx)
		s.logger.InfoContext(ctx, "Report accepted",
			attr.Identity(report.Identity),
			attr.Date("date", report.Date),
			attr.Int("steps", report.Steps),
			attr.ExtractCorrelationID(ctx),
		)
		return result, nil
	})
}

func (s *ReportService) storeReport(ctx context.Context, db bun.IDB, report reportdomain.Report, remember bool, username string) (IngestResult, error) {
	if err := s.repo.UpsertReport(ctx, db, reportdb.FromDomain(report)); err != nil {
		return IngestResult{}, err
	}
	if remember && report.SenderID != 0 {
		if err := s.repo.RememberNickname(ctx, db, report.SenderID, report.Identity, username); err != nil {
			return IngestResult{}, err
		}
	}
	return results.SuccessResult[IngestSuccess, error](IngestSuccess{Report: report}), nil
}

func (s *ReportService) rememberedNickname(ctx context.Context, senderID int64) (string, error) {
	if senderID == 0 {
		return "", nil
	}
	nickname, err := s.repo.FindNicknameForSender(ctx, nil, senderID)
	if errors.Is(err, reportdb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecordStore, err)
	}
	return nickname, nil
}

// logMessage keeps the raw message. Failures are logged and ignored.
func (s *ReportService) logMessage(ctx context.Context, msg IncomingMessage) {
	sentAt := msg.SentAt
	if sentAt.IsZero() {
		sentAt = s.now()
	}
	err := s.repo.LogMessage(ctx, nil, &reportdb.ChatMessage{
		ChatID:    msg.ChatID,
		MessageID: msg.MessageID,
		SenderID:  msg.SenderID,
		Username:  msg.Username,
		Text:      msg.Text,
		SentAt:    sentAt.UTC(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to log chat message",
			attr.Int64("chat_id", msg.ChatID),
			attr.Int64("message_id", msg.MessageID),
			attr.Error(err),
		)
	}
}

// PruneMessages removes logged messages older than retention.
func (s *ReportService) PruneMessages(ctx context.Context, retention time.Duration) (int, error) {
	result, err := withTelemetry(s, ctx, "PruneMessages", retention.String(), func(ctx context.Context) (results.OperationResult[int, error], error) {
		n, err := s.repo.PruneMessages(ctx, nil, s.now().Add(-retention))
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}
		return results.SuccessResult[int, error](n), nil
	})
	if err != nil {
		return 0, err
	}
	return *result.Success, nil
}
