package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/medscan/pkg/model"
	"github.com/m-mizutani/medscan/pkg/preprocess"
	"github.com/urfave/cli/v3"
)

func identifyCommand() *cli.Command {
	var cfg config

	flags := clientFlags(&cfg)
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "identify",
		Usage:     "Identify a medicine from a photo",
		ArgsUsage: "<image-file>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			path := c.Args().First()
			if path == "" {
				return goerr.New("image file is required")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read image file", goerr.V("path", path))
			}

			encoded, err := preprocess.Preprocess(http.DetectContentType(data), data)
			if err != nil {
				return goerr.Wrap(err, "failed to preprocess image")
			}

			hist, repo, err := cfg.newHistory()
			if err != nil {
				return err
			}
			defer repo.Close()

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " Analyzing medicine image..."
			sp.Start()
			record, err := cfg.newClient().Identify(ctx, encoded)
			sp.Stop()
			if err != nil {
				return goerr.Wrap(err, "identification failed")
			}

			// Persist before presenting; the capture time is stamped here
			if _, err := hist.Record(ctx, record); err != nil {
				return goerr.Wrap(err, "failed to save to history")
			}

			printRecord(c.Root().Writer, record)
			return nil
		},
	}
}

func printRecord(w io.Writer, record *model.MedicineRecord) {
	fmt.Fprintf(w, "Medicine:     %s\n", record.MedicineName)
	fmt.Fprintf(w, "Generic name: %s\n", record.GenericName)
	fmt.Fprintf(w, "Dosage:       %s\n", record.Dosage)
	if record.Manufacturer != "" && record.Manufacturer != model.SentinelNA {
		fmt.Fprintf(w, "Manufacturer: %s\n", record.Manufacturer)
	}
	fmt.Fprintf(w, "Confidence:   %s\n\n", record.Confidence)
	fmt.Fprintf(w, "Uses:\n  %s\n", record.Uses)
	fmt.Fprintf(w, "Side effects:\n  %s\n", record.SideEffects)
	fmt.Fprintf(w, "Precautions:\n  %s\n\n", record.Precautions)
	fmt.Fprintln(w, "Always consult a healthcare professional before taking any medication.")
}
