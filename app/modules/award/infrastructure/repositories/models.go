package awarddb

import (
	"time"

	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	"github.com/uptrace/bun"
)

// StepAward is a stored medal, keyed by day and nickname.
type StepAward struct {
	bun.BaseModel `bun:"table:step_awards,alias:sa"`

	Date        time.Time `bun:"date,pk,type:date"`
	NicknameKey string    `bun:"nickname_key,pk"`
	Nickname    string    `bun:"nickname,notnull"`
	Rank        int       `bun:"rank,notnull"`
	Medal       string    `bun:"medal,notnull"`
	Symbol      string    `bun:"symbol,notnull"`
	Steps       int       `bun:"steps,notnull"`
	AwardedAt   time.Time `bun:"awarded_at,nullzero,notnull,default:current_timestamp"`
}

// FromDomain converts an award to its row.
func FromDomain(a awarddomain.Award) *StepAward {
	return &StepAward{
		Date:        a.Date,
		NicknameKey: a.Key,
		Nickname:    a.Identity,
		Rank:        a.Rank,
		Medal:       string(a.Medal),
		Symbol:      a.Symbol(),
		Steps:       a.Steps,
	}
}

// ToDomain converts the row back to an award.
func (s StepAward) ToDomain() awarddomain.Award {
	y, m, d := s.Date.Date()
	return awarddomain.Award{
		Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Identity: s.Nickname,
		Key:      s.NicknameKey,
		Rank:     s.Rank,
		Medal:    awarddomain.Medal(s.Medal),
		Steps:    s.Steps,
	}
}
