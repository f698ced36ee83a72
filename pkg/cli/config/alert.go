package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ticketcal/pkg/service/slack"
)

// Alert holds CLI flags for the Slack channel receiving permanent task failures
type Alert struct {
	botToken string
	channel  string
}

func (x *Alert) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Category:    "Alert",
			Usage:       "Slack bot token used to post alerts",
			Sources:     cli.EnvVars("TICKETCAL_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-alert-channel",
			Category:    "Alert",
			Usage:       "Slack channel ID receiving alerts",
			Sources:     cli.EnvVars("TICKETCAL_SLACK_ALERT_CHANNEL"),
			Destination: &x.channel,
		},
	}
}

// IsConfigured reports whether alerts are enabled
func (x *Alert) IsConfigured() bool {
	return x.botToken != "" || x.channel != ""
}

func (x Alert) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("bot_token", x.botToken != ""),
		slog.String("channel", x.channel),
	)
}

// Configure builds the notifier. It returns nil when alerts are not configured.
func (x *Alert) Configure() (*slack.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	n, err := slack.New(x.botToken, x.channel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Slack alert")
	}
	return n, nil
}
