package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	awardmigrations "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/repositories/migrations"
	reportmigrations "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/step-bot/integration_tests/containers"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// appTables lists every table the module migrations create.
var appTables = []string{"step_awards", "step_reports", "step_users", "chat_messages"}

// PostgresEnv is a migrated database in a throwaway container.
type PostgresEnv struct {
	DSN string
	DB  *bun.DB
}

// NewPostgresEnv starts Postgres, runs every module migration and registers
// cleanup on t. The test is skipped under -short or without a docker daemon.
func NewPostgresEnv(t *testing.T) *PostgresEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, dsn, err := containers.SetupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	db := OpenDB(dsn)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, RunMigrations(ctx, db))

	return &PostgresEnv{DSN: dsn, DB: db}
}

// OpenDB opens a separate connection pool, as another process would.
func OpenDB(dsn string) *bun.DB {
	return bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())
}

// RunMigrations applies the report and award migrations in dependency order.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	ordered := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"report", reportmigrations.Migrations},
		{"award", awardmigrations.Migrations},
	}
	for _, mod := range ordered {
		migrator := migrate.NewMigrator(db, mod.migrations,
			migrate.WithTableName("bun_migrations_"+mod.name),
			migrate.WithLocksTableName("bun_migration_locks_"+mod.name),
		)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", mod.name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.name, err)
		}
	}
	return nil
}

// Reset truncates every application table.
func (e *PostgresEnv) Reset(t *testing.T) {
	t.Helper()
	for _, table := range appTables {
		_, err := e.DB.ExecContext(context.Background(), "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err)
	}
}
