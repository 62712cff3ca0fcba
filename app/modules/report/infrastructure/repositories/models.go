package reportdb

import (
	"time"

	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
	"github.com/uptrace/bun"
)

// StepReport is the stored step count of one nickname for one day.
type StepReport struct {
	bun.BaseModel `bun:"table:step_reports,alias:sr"`

	ID          int64     `bun:"id,pk,autoincrement"`
	NicknameKey string    `bun:"nickname_key,notnull,unique:step_reports_key_date"`
	Nickname    string    `bun:"nickname,notnull"`
	Date        time.Time `bun:"date,type:date,notnull,unique:step_reports_key_date"`
	Steps       int       `bun:"steps,notnull"`
	SenderID    int64     `bun:"sender_id"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// FromDomain converts a parsed report to its row.
func FromDomain(r reportdomain.Report) *StepReport {
	return &StepReport{
		NicknameKey: r.Key,
		Nickname:    r.Identity,
		Date:        reportdomain.Day(r.Date),
		Steps:       r.Steps,
		SenderID:    r.SenderID,
	}
}

// ToDomain converts the row back to a report.
func (s StepReport) ToDomain() reportdomain.Report {
	return reportdomain.Report{
		Identity: s.Nickname,
		Key:      s.NicknameKey,
		Date:     reportdomain.Day(s.Date),
		Steps:    s.Steps,
		SenderID: s.SenderID,
	}
}

// StepUser remembers the last nickname a chat sender reported under.
type StepUser struct {
	bun.BaseModel `bun:"table:step_users,alias:su"`

	SenderID  int64     `bun:"sender_id,pk"`
	Nickname  string    `bun:"nickname,notnull"`
	Username  string    `bun:"username"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ChatMessage is one raw inbound message, kept for a limited time.
type ChatMessage struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`

	ID         int64     `bun:"id,pk,autoincrement"`
	ChatID     int64     `bun:"chat_id,notnull"`
	MessageID  int64     `bun:"message_id,notnull"`
	SenderID   int64     `bun:"sender_id"`
	Username   string    `bun:"username"`
	Text       string    `bun:"text,notnull"`
	SentAt     time.Time `bun:"sent_at,notnull"`
	ReceivedAt time.Time `bun:"received_at,nullzero,notnull,default:current_timestamp"`
}
