package cli

import (
	"context"

	"github.com/m-mizutani/medscan/pkg/server"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MEDSCAN_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "Gemini model name",
			Sources:     cli.EnvVars("MEDSCAN_MODEL"),
			Destination: &cfg.model,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the identification proxy server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			opts := []server.Option{}
			if model := cfg.modelName(); model != "" {
				opts = append(opts, server.WithModel(model))
			}

			return server.New(opts...).Run(ctx, addr)
		},
	}
}
