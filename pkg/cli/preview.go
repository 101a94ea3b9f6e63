package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/usecase"
	"github.com/secmon-lab/tributary/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const maxPreviewInput = 16 << 20

func cmdPreview() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Aliases:   []string{"p"},
		Usage:     "Infer the field schema of a JSON source document",
		ArgsUsage: "[FILE] (reads stdin when omitted or -)",
		Action: func(ctx context.Context, c *cli.Command) error {
			raw, err := readPreviewInput(ctx, c.Args().First())
			if err != nil {
				return err
			}

			mapping, err := usecase.NewSchemaUseCase().Preview(ctx, raw)
			if err != nil {
				return err
			}

			printSchema(c.Root().Writer, mapping)
			return nil
		},
	}
}

func readPreviewInput(ctx context.Context, path string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		// #nosec G304 - path is expected to be provided by CLI argument
		f, err := os.Open(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open source document", goerr.V("path", path))
		}
		defer safe.Close(ctx, f)
		r = f
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxPreviewInput))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read source document", goerr.V("path", path))
	}
	return raw, nil
}
