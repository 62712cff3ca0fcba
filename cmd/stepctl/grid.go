package main

import (
	"fmt"
	"os"

	"github.com/Black-And-White-Club/step-bot/app/modules/grid"
	gridxlsx "github.com/Black-And-White-Club/step-bot/app/modules/grid/infrastructure/xlsx"
	"github.com/Black-And-White-Club/step-bot/config"
	"github.com/urfave/cli/v2"
)

func gridCommand() *cli.Command {
	return &cli.Command{
		Name:  "grid",
		Usage: "shared step spreadsheet",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "copy the configured grid into a local .xlsx file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Required: true, Usage: "output .xlsx path"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					store, err := grid.NewStore(c.Context, cfg.Grid)
					if err != nil {
						return err
					}
					values, err := store.Values(c.Context)
					if err != nil {
						return fmt.Errorf("read grid: %w", err)
					}

					f, err := os.Create(c.String("out"))
					if err != nil {
						return err
					}
					if err := gridxlsx.Export(f, cfg.Grid.Sheet, values); err != nil {
						f.Close()
						return fmt.Errorf("export grid: %w", err)
					}
					if err := f.Close(); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Exported %d row(s) to %s\n", len(values), c.String("out"))
					return nil
				},
			},
		},
	}
}
