package reportmigrations

import (
	"context"
	"fmt"

	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating step_reports and step_users tables...")

		if _, err := db.NewCreateTable().Model((*reportdb.StepReport)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create step_reports table: %w", err)
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_step_reports_date ON step_reports(date)").Exec(ctx); err != nil {
			return fmt.Errorf("failed to create step_reports date index: %w", err)
		}
		if _, err := db.NewCreateTable().Model((*reportdb.StepUser)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create step_users table: %w", err)
		}

		fmt.Println("step_reports and step_users tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping step_reports and step_users tables...")

		if _, err := db.NewDropTable().Model((*reportdb.StepUser)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop step_users table: %w", err)
		}
		if _, err := db.NewDropTable().Model((*reportdb.StepReport)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop step_reports table: %w", err)
		}

		fmt.Println("step_reports and step_users tables dropped successfully!")
		return nil
	})
}
