package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "history",
		Usage: "List recent scans",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			hist, repo, err := cfg.newHistory()
			if err != nil {
				return err
			}
			defer repo.Close()

			log := hist.Load(ctx)
			if len(log) == 0 {
				fmt.Fprintln(c.Root().Writer, "No recent scans yet")
				return nil
			}

			for i, record := range log {
				capturedAt := time.UnixMilli(record.CapturedAt).Format("2006-01-02 15:04")
				fmt.Fprintf(c.Root().Writer, "%d\t%s\t%s\t%s\n",
					i, record.MedicineName, record.Confidence, capturedAt)
			}
			return nil
		},
	}
}
