package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "show",
		Usage:     "Show a stored scan result",
		ArgsUsage: "<index>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			index, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return goerr.Wrap(err, "index must be a number")
			}

			hist, repo, err := cfg.newHistory()
			if err != nil {
				return err
			}
			defer repo.Close()

			record, err := hist.Select(ctx, index)
			if err != nil {
				return goerr.Wrap(err, "failed to select history entry")
			}

			data, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal record")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", string(data))
			return nil
		},
	}
}
