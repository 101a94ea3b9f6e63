package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/service/archive"
	"github.com/urfave/cli/v3"
)

// Archive holds configuration for the Cloud Storage history archive
type Archive struct {
	bucket string
	prefix string
}

func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "history-archive-bucket",
			Usage:       "Cloud Storage bucket receiving every history entry as JSON",
			Category:    "History",
			Sources:     cli.EnvVars("TRIBUTARY_HISTORY_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "history-archive-prefix",
			Usage:       "Object name prefix in the archive bucket",
			Category:    "History",
			Value:       "history/",
			Sources:     cli.EnvVars("TRIBUTARY_HISTORY_ARCHIVE_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

func (x Archive) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure returns nil when no bucket is set. The caller closes the archiver.
func (x *Archive) Configure(ctx context.Context) (*archive.Archiver, error) {
	if x.bucket == "" {
		return nil, nil
	}
	a, err := archive.New(ctx, x.bucket, archive.WithPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize history archive")
	}
	return a, nil
}
