package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/service/notion"
	"github.com/urfave/cli/v3"
)

// Notion holds configuration for the notion source kind
type Notion struct {
	token string
}

func (x *Notion) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notion-api-token",
			Usage:       "Notion API token for notion sources",
			Category:    "Source",
			Sources:     cli.EnvVars("TRIBUTARY_NOTION_API_TOKEN"),
			Destination: &x.token,
		},
	}
}

func (x Notion) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("token.len", len(x.token)))
}

// Configure returns nil when no token is set
func (x *Notion) Configure() (notion.Service, error) {
	if x.token == "" {
		return nil, nil
	}
	svc, err := notion.New(x.token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize notion service")
	}
	return svc, nil
}
