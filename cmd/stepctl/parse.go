package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
	"github.com/urfave/cli/v2"
)

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "show how a chat message would be read, without storing it",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "nick", Usage: "remembered nickname used when the message has none"},
			&cli.TimestampFlag{Name: "at", Layout: time.DateOnly, Usage: "message date for reports without one"},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				return errors.New("parse: message text is required")
			}
			now := time.Now()
			if at := c.Timestamp("at"); at != nil {
				now = *at
			}
			return describe(c.App.Writer, text, c.String("nick"), now)
		},
	}
}

func describe(w io.Writer, text, nick string, now time.Time) error {
	if !reportdomain.HasMarker(text) {
		fmt.Fprintln(w, "ignored: no report marker")
		return nil
	}

	ext := reportdomain.Extract(text, now)
	r, err := ext.Report(nick)
	if err != nil {
		var pe *reportdomain.ParseError
		if errors.As(err, &pe) {
			fmt.Fprintf(w, "rejected: %s\n", pe.ReasonLabel())
			return nil
		}
		return err
	}

	dateSource := "message"
	if !ext.DateFound {
		dateSource = "default"
	}
	fmt.Fprintf(w, "identity: %s\n", r.Identity)
	fmt.Fprintf(w, "key:      %s\n", r.Key)
	fmt.Fprintf(w, "date:     %s (%s)\n", r.Date.Format("02.01.2006"), dateSource)
	fmt.Fprintf(w, "steps:    %d\n", r.Steps)
	return nil
}
