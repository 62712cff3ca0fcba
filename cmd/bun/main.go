package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	awardmigrations "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/repositories/migrations"
	reportmigrations "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// moduleMigrator pairs a module with its own migration bookkeeping tables.
type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func newMigrators(db *bun.DB) []moduleMigrator {
	table := func(module string) []migrate.MigratorOption {
		return []migrate.MigratorOption{
			migrate.WithTableName("bun_migrations_" + module),
			migrate.WithLocksTableName("bun_migration_locks_" + module),
		}
	}
	// Award tables are created after report tables.
	return []moduleMigrator{
		{name: "report", migrator: migrate.NewMigrator(db, reportmigrations.Migrations, table("report")...)},
		{name: "award", migrator: migrate.NewMigrator(db, awardmigrations.Migrations, table("award")...)},
	}
}

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "step bot database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "Path to the configuration file"},
			&cli.StringFlag{Name: "dsn", EnvVars: []string{"DATABASE_URL"}, Usage: "Postgres DSN, overrides the config file"},
		},
		Commands: []*cli.Command{
			newDBCommand(),
			newRiverCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func resolveDSN(c *cli.Context) (string, error) {
	if dsn := c.String("dsn"); dsn != "" {
		return dsn, nil
	}
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.Postgres.DSN, nil
}

func withMigrators(fn func(c *cli.Context, migrators []moduleMigrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		dsn, err := resolveDSN(c)
		if err != nil {
			return err
		}
		pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db := bun.NewDB(pgdb, pgdialect.New())
		defer db.Close()
		return fn(c, newMigrators(db))
	}
}

func findMigrator(migrators []moduleMigrator, name string) (*migrate.Migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %q", name)
}

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator) error {
					for _, m := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", m.name)
						if err := m.migrator.Init(c.Context); err != nil {
							return fmt.Errorf("init %s: %w", m.name, err)
						}
					}
					return nil
				}),
			},
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator) error {
					for _, m := range migrators {
						if err := migrateModule(c.Context, m); err != nil {
							return err
						}
					}
					return nil
				}),
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group of every module",
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator) error {
					for i := len(migrators) - 1; i >= 0; i-- {
						m := migrators[i]
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return fmt.Errorf("rollback %s: %w", m.name, err)
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module %s: %s\n", m.name, group)
						}
					}
					return nil
				}),
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator) error {
					migrator, err := findMigrator(migrators, c.Args().First())
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator) error {
					for _, m := range migrators {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return fmt.Errorf("status %s: %w", m.name, err)
						}
						fmt.Printf("Module %s\n", m.name)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				}),
			},
		},
	}
}

func migrateModule(ctx context.Context, m moduleMigrator) error {
	if err := m.migrator.Init(ctx); err != nil {
		return fmt.Errorf("init %s: %w", m.name, err)
	}
	if err := m.migrator.Lock(ctx); err != nil {
		return fmt.Errorf("lock %s: %w", m.name, err)
	}
	defer m.migrator.Unlock(ctx) //nolint:errcheck

	group, err := m.migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", m.name, err)
	}
	if group.IsZero() {
		fmt.Printf("No new migrations to run for module: %s\n", m.name)
	} else {
		fmt.Printf("Migrated module %s to %s\n", m.name, group)
	}
	return nil
}

func newRiverCommand() *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "job queue schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply River queue migrations",
				Action: func(c *cli.Context) error {
					return withRiverMigrator(c, func(m *rivermigrate.Migrator[pgx.Tx]) error {
						res, err := m.Migrate(c.Context, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
						if err != nil {
							return err
						}
						for _, v := range res.Versions {
							fmt.Printf("Applied River migration %03d\n", v.Version)
						}
						return nil
					})
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last River migration",
				Action: func(c *cli.Context) error {
					return withRiverMigrator(c, func(m *rivermigrate.Migrator[pgx.Tx]) error {
						res, err := m.Migrate(c.Context, rivermigrate.DirectionDown, &rivermigrate.MigrateOpts{MaxSteps: 1})
						if err != nil {
							return err
						}
						if len(res.Versions) == 0 {
							return errors.New("no River migrations to roll back")
						}
						fmt.Printf("Rolled back River migration %03d\n", res.Versions[0].Version)
						return nil
					})
				},
			},
		},
	}
}

func withRiverMigrator(c *cli.Context, fn func(m *rivermigrate.Migrator[pgx.Tx]) error) error {
	dsn, err := resolveDSN(c)
	if err != nil {
		return err
	}
	pool, err := pgxpool.New(c.Context, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	return fn(migrator)
}
