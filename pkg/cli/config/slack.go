package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds configuration for sync failure notifications
type Slack struct {
	botToken string
	channel  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (enables failure notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TRIBUTARY_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID receiving failure notifications",
			Category:    "Slack",
			Destination: &x.channel,
			Sources:     cli.EnvVars("TRIBUTARY_SLACK_CHANNEL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channel),
	)
}

// IsConfigured reports whether a bot token is set
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates the failure notifier. Returns nil when no bot token is set.
func (x *Slack) Configure() (*slack.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.channel == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "slack-channel is required when slack-bot-token is set",
			goerr.V(FlagKey, "slack-channel"))
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return slack.NewNotifier(svc, x.channel), nil
}
