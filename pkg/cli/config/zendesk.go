package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ticketcal/pkg/service/ticketing"
)

// Zendesk holds CLI flags for the ticketing backend
type Zendesk struct {
	url   string
	email string
	token string
}

func (x *Zendesk) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "zendesk-url",
			Category:    "Zendesk",
			Usage:       "Zendesk base URL, e.g. https://example.zendesk.com",
			Sources:     cli.EnvVars("TICKETCAL_ZENDESK_URL"),
			Destination: &x.url,
		},
		&cli.StringFlag{
			Name:        "zendesk-email",
			Category:    "Zendesk",
			Usage:       "Email of the Zendesk agent owning the API token",
			Sources:     cli.EnvVars("TICKETCAL_ZENDESK_EMAIL"),
			Destination: &x.email,
		},
		&cli.StringFlag{
			Name:        "zendesk-token",
			Category:    "Zendesk",
			Usage:       "Zendesk API token",
			Sources:     cli.EnvVars("TICKETCAL_ZENDESK_TOKEN"),
			Destination: &x.token,
		},
	}
}

// URL is the ticketing base URL, also used for deep links and the post-login redirect
func (x *Zendesk) URL() string {
	return x.url
}

func (x Zendesk) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.url),
		slog.String("email", x.email),
		slog.Bool("token", x.token != ""),
	)
}

// Configure builds the ticketing client
func (x *Zendesk) Configure() (ticketing.Service, error) {
	required := []struct{ name, value string }{
		{"zendesk-url", x.url},
		{"zendesk-email", x.email},
		{"zendesk-token", x.token},
	}
	for _, opt := range required {
		if opt.value == "" {
			return nil, goerr.Wrap(ErrMissingOption, "Zendesk option is required", goerr.V(OptionKey, opt.name))
		}
	}

	svc, err := ticketing.New(x.url, x.email, x.token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Zendesk client")
	}
	return svc, nil
}
