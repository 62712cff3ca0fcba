package awardmigrations

import (
	"context"
	"fmt"

	awarddb "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating step_awards table...")

		if _, err := db.NewCreateTable().Model((*awarddb.StepAward)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create step_awards table: %w", err)
		}

		fmt.Println("step_awards table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping step_awards table...")

		if _, err := db.NewDropTable().Model((*awarddb.StepAward)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop step_awards table: %w", err)
		}

		fmt.Println("step_awards table dropped successfully!")
		return nil
	})
}
