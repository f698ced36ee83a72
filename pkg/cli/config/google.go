package config

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/service/calendar"
)

// CallbackPath is where Google redirects after consent
const CallbackPath = "/oauth/callback"

// Google holds CLI flags for the Google OAuth client
type Google struct {
	clientID     string
	clientSecret string
}

func (x *Google) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "google-client-id",
			Category:    "Google",
			Usage:       "Google OAuth client ID",
			Sources:     cli.EnvVars("TICKETCAL_GOOGLE_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "google-client-secret",
			Category:    "Google",
			Usage:       "Google OAuth client secret",
			Sources:     cli.EnvVars("TICKETCAL_GOOGLE_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
	}
}

func (x Google) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", x.clientID),
		slog.Bool("client_secret", x.clientSecret != ""),
	)
}

// OAuthConfig builds the OAuth client redirecting back to baseURL
func (x *Google) OAuthConfig(baseURL string) (*oauth2.Config, error) {
	if x.clientID == "" {
		return nil, goerr.Wrap(ErrMissingOption, "Google client ID is required", goerr.V(OptionKey, "google-client-id"))
	}
	if x.clientSecret == "" {
		return nil, goerr.Wrap(ErrMissingOption, "Google client secret is required", goerr.V(OptionKey, "google-client-secret"))
	}
	return calendar.NewOAuthConfig(x.clientID, x.clientSecret, strings.TrimRight(baseURL, "/")+CallbackPath), nil
}

// Configure builds the OAuth client and the per-profile calendar factory
func (x *Google) Configure(baseURL string, creds interfaces.CredentialRepository) (*oauth2.Config, calendar.Factory, error) {
	cfg, err := x.OAuthConfig(baseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, calendar.NewFactory(cfg, creds), nil
}
