package reportservice

import (
	"errors"
	"fmt"

	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
)

// Fixed chat replies.
const (
	ReplyMissingIdentity = "Отсутствует #ник"
	ReplyMissingSteps    = "Отсутствует количество шагов"
	ReplyStoreError      = "Ошибка сохранения данных"
	replyAcceptedFormat  = "#%s - принято"
)

// ReplyAccepted is the confirmation for a stored report.
func ReplyAccepted(identity string) string {
	return fmt.Sprintf(replyAcceptedFormat, identity)
}

// Reply picks the chat answer for an ingestion outcome. ok is false when the
// message needs no answer.
func Reply(result IngestResult, err error) (text string, ok bool) {
	if err != nil {
		return ReplyStoreError, true
	}
	if result.IsFailure() {
		switch {
		case errors.Is(*result.Failure, reportdomain.ErrMissingIdentity):
			return ReplyMissingIdentity, true
		case errors.Is(*result.Failure, reportdomain.ErrMissingSteps):
			return ReplyMissingSteps, true
		default:
			return ReplyStoreError, true
		}
	}
	if result.IsSuccess() && !result.Success.Ignored {
		return ReplyAccepted(result.Success.Report.Identity), true
	}
	return "", false
}
