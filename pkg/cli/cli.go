package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	// Local development keeps the Gemini key in .env; absence just means
	// the environment provides it directly
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "medscan",
		Usage: "Medicine photo identification",
		Commands: []*cli.Command{
			serveCommand(),
			identifyCommand(),
			historyCommand(),
			showCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
