package reportmigrations

import (
	"context"
	"fmt"

	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating chat_messages table...")

		if _, err := db.NewCreateTable().Model((*reportdb.ChatMessage)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create chat_messages table: %w", err)
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_chat_messages_received_at ON chat_messages(received_at)").Exec(ctx); err != nil {
			return fmt.Errorf("failed to create chat_messages index: %w", err)
		}

		fmt.Println("chat_messages table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping chat_messages table...")

		if _, err := db.NewDropTable().Model((*reportdb.ChatMessage)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop chat_messages table: %w", err)
		}

		fmt.Println("chat_messages table dropped successfully!")
		return nil
	})
}
