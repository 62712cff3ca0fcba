package reportdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new report repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// UpsertReport stores a report keyed by (nickname_key, date).
func (r *Impl) UpsertReport(ctx context.Context, db bun.IDB, report *StepReport) error {
	db = r.resolveDB(db)
	report.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(report).
		On("CONFLICT (nickname_key, date) DO UPDATE").
		Set("nickname = EXCLUDED.nickname").
		Set("steps = EXCLUDED.steps").
		Set("sender_id = EXCLUDED.sender_id").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reportdb.UpsertReport: %w", err)
	}
	return nil
}

// FindReports returns the reports in [from, to).
func (r *Impl) FindReports(ctx context.Context, db bun.IDB, from, to time.Time) ([]StepReport, error) {
	db = r.resolveDB(db)
	var reports []StepReport
	err := db.NewSelect().
		Model(&reports).
		Where("date >= ?", from.UTC().Format(time.DateOnly)).
		Where("date < ?", to.UTC().Format(time.DateOnly)).
		OrderExpr("date ASC, nickname_key ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("reportdb.FindReports: %w", err)
	}
	return reports, nil
}

// FindNicknameForSender returns the sender's remembered nickname.
func (r *Impl) FindNicknameForSender(ctx context.Context, db bun.IDB, senderID int64) (string, error) {
	db = r.resolveDB(db)
	user := new(StepUser)
	err := db.NewSelect().
		Model(user).
		Where("sender_id = ?", senderID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reportdb.FindNicknameForSender: %w", err)
	}
	return user.Nickname, nil
}

// RememberNickname creates or updates the sender's nickname.
func (r *Impl) RememberNickname(ctx context.Context, db bun.IDB, senderID int64, nickname, username string) error {
	db = r.resolveDB(db)
	user := &StepUser{
		SenderID:  senderID,
		Nickname:  nickname,
		Username:  username,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().
		Model(user).
		On("CONFLICT (sender_id) DO UPDATE").
		Set("nickname = EXCLUDED.nickname").
		Set("username = EXCLUDED.username").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reportdb.RememberNickname: %w", err)
	}
	return nil
}

// LogMessage appends a raw chat message.
func (r *Impl) LogMessage(ctx context.Context, db bun.IDB, msg *ChatMessage) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(msg).Exec(ctx); err != nil {
		return fmt.Errorf("reportdb.LogMessage: %w", err)
	}
	return nil
}

// PruneMessages deletes messages received before the cutoff.
func (r *Impl) PruneMessages(ctx context.Context, db bun.IDB, before time.Time) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*ChatMessage)(nil)).
		Where("received_at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("reportdb.PruneMessages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reportdb.PruneMessages: rows affected: %w", err)
	}
	return int(n), nil
}
