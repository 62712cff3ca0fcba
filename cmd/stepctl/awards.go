package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Black-And-White-Club/step-bot/app"
	awardservice "github.com/Black-And-White-Club/step-bot/app/modules/award/application"
	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	awarddb "github.com/Black-And-White-Club/step-bot/app/modules/award/infrastructure/repositories"
	"github.com/Black-And-White-Club/step-bot/app/modules/grid"
	reportdb "github.com/Black-And-White-Club/step-bot/app/modules/report/infrastructure/repositories"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/Black-And-White-Club/step-bot/internal/observability"
	"github.com/Black-And-White-Club/step-bot/internal/pglock"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/olebedev/when/rules/ru"
	"github.com/urfave/cli/v2"
)

func awardsCommand() *cli.Command {
	return &cli.Command{
		Name:  "awards",
		Usage: "daily medal ranking",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "rank a day's reports, store the medals and annotate the grid",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Value: "yesterday", Usage: `day to rank: DD.MM.YYYY, YYYY-MM-DD or text like "yesterday"`},
				},
				Action: runAwards,
			},
		},
	}
}

func runAwards(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	day, err := resolveDay(c.String("date"), time.Now(), cfg.AwardLocation())
	if err != nil {
		return err
	}

	obs := observability.New(config.ToObsConfig(cfg))
	ctx := c.Context

	db := app.OpenDB(cfg.Postgres.DSN)
	defer db.Close()

	gridModule, err := grid.NewGridModule(ctx, cfg, obs, awarddomain.Symbols(), pglock.New(db, "grid"))
	if err != nil {
		return err
	}

	service := awardservice.NewAwardService(
		awarddb.NewRepository(db),
		reportdb.NewRepository(db),
		gridModule.Syncer,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		db,
	)

	run, err := service.AssignAwards(ctx, day)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if run.Summary == "" {
		fmt.Fprintf(w, "No reports for %s\n", day.Format("02.01.2006"))
	} else {
		fmt.Fprintln(w, run.Summary)
	}
	if run.Removed > 0 {
		fmt.Fprintf(w, "Cleared %d stale medal(s)\n", run.Removed)
	}
	if run.AnnotationFailures > 0 {
		fmt.Fprintf(w, "%d grid annotation(s) failed, see logs\n", run.AnnotationFailures)
	}
	return nil
}

// resolveDay reads an explicit date first and falls back to natural
// language in English or Russian, relative to now in loc.
func resolveDay(expr string, now time.Time, loc *time.Location) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return awarddomain.TargetDay(now, loc), nil
	}
	if day, err := awarddomain.ParseDay(expr); err == nil {
		return day, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(ru.All...)
	w.Add(common.All...)

	r, err := w.Parse(strings.ToLower(expr), now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", expr)
	}
	y, m, d := r.Time.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
