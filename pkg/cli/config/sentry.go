package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error reporting
type Sentry struct {
	dsn         string
	environment string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Category:    "Sentry",
			Usage:       "Sentry DSN; errors are reported when set",
			Sources:     cli.EnvVars("TICKETCAL_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Category:    "Sentry",
			Usage:       "Sentry environment",
			Sources:     cli.EnvVars("TICKETCAL_SENTRY_ENV"),
			Destination: &x.environment,
		},
	}
}

func (x Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("dsn", x.dsn != ""),
		slog.String("env", x.environment),
	)
}

// Configure initializes the Sentry client. The returned function flushes pending events.
func (x *Sentry) Configure(release string) (func(), error) {
	if x.dsn == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.environment,
		Release:     release,
	}); err != nil {
		return func() {}, goerr.Wrap(err, "failed to initialize Sentry")
	}

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
