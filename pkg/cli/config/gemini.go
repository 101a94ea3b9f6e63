package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/tributary/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the LLM behind ai_transform rules
type Gemini struct {
	projectID string
	location  string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API (enables ai_transform rules)",
			Category:    "LLM",
			Sources:     cli.EnvVars("TRIBUTARY_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TRIBUTARY_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

func (g Gemini) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	)
}

// Configure creates the text transformer used by ai_transform rules.
// Returns nil if projectID is not configured; those rules then leave values unchanged.
func (g *Gemini) Configure(ctx context.Context) (*llm.Transformer, error) {
	if g.projectID == "" {
		return nil, nil
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	transformer, err := llm.New(client)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create text transformer")
	}
	return transformer, nil
}
