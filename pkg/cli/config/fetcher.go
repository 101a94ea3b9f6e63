package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/service/fetcher"
	"github.com/urfave/cli/v3"
)

// Fetcher holds limits for api sources
type Fetcher struct {
	timeout     time.Duration
	maxBodySize int64
}

func (x *Fetcher) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "fetch-timeout",
			Usage:       "Timeout of a single api source request",
			Category:    "Source",
			Value:       fetcher.DefaultTimeout,
			Sources:     cli.EnvVars("TRIBUTARY_FETCH_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.Int64Flag{
			Name:        "fetch-max-body-size",
			Usage:       "Largest api source response accepted, in bytes",
			Category:    "Source",
			Value:       fetcher.DefaultMaxBodySize,
			Sources:     cli.EnvVars("TRIBUTARY_FETCH_MAX_BODY_SIZE"),
			Destination: &x.maxBodySize,
		},
	}
}

func (x Fetcher) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("timeout", x.timeout.String()),
		slog.Int64("max_body_size", x.maxBodySize),
	)
}

func (x *Fetcher) Configure() (fetcher.Service, error) {
	if x.timeout <= 0 {
		return nil, goerr.Wrap(ErrInvalidFlag, "fetch timeout must be positive",
			goerr.V(FlagKey, "fetch-timeout"), goerr.V("value", x.timeout.String()))
	}
	if x.maxBodySize <= 0 {
		return nil, goerr.Wrap(ErrInvalidFlag, "fetch max body size must be positive",
			goerr.V(FlagKey, "fetch-max-body-size"), goerr.V("value", x.maxBodySize))
	}
	return fetcher.New(fetcher.WithTimeout(x.timeout), fetcher.WithMaxBodySize(x.maxBodySize)), nil
}
