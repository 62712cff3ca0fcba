// Command stepctl runs one-off step bot operations from a shell.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "stepctl",
		Usage: "step bot operator tools",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "Path to the configuration file"},
		},
		Commands: []*cli.Command{
			parseCommand(),
			awardsCommand(),
			gridCommand(),
		},
	}
}
