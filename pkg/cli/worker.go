package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/ticketcal/pkg/cli/config"
	"github.com/secmon-lab/ticketcal/pkg/service/taskqueue"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
	"github.com/secmon-lab/ticketcal/pkg/utils/metrics"
)

func cmdWorker() *cli.Command {
	var metricsAddr string
	var renewSpec string
	var rtCfg runtimeConfig
	var alertCfg config.Alert

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "metrics-addr",
			Usage:       "Address serving /metrics and /health of the worker; empty disables it",
			Value:       ":9090",
			Sources:     cli.EnvVars("TICKETCAL_METRICS_ADDR"),
			Destination: &metricsAddr,
		},
		&cli.StringFlag{
			Name:        "renew-spec",
			Usage:       "Cron spec of the channel renewal sweep; empty disables it",
			Value:       taskqueue.DefaultRenewSpec,
			Sources:     cli.EnvVars("TICKETCAL_RENEW_SPEC"),
			Destination: &renewSpec,
		},
	}
	flags = append(flags, rtCfg.Flags()...)
	flags = append(flags, alertCfg.Flags()...)

	return &cli.Command{
		Name:    "worker",
		Aliases: []string{"w"},
		Usage:   "Consume queued tasks and run the periodic channel renewal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !rtCfg.queue.Enabled() {
				return goerr.Wrap(config.ErrMissingOption, "worker needs the task queue", goerr.V(config.OptionKey, "queue-url"))
			}

			rt, err := rtCfg.build(ctx, dispatchConfigured)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			opts := []taskqueue.ServerOption{taskqueue.WithRenewSpec(renewSpec)}
			notifier, err := alertCfg.Configure()
			if err != nil {
				return err
			}
			if notifier != nil {
				opts = append(opts, taskqueue.WithAlerter(notifier))
			}

			srv, err := rtCfg.queue.NewServer(rt.uc, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create task server")
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				<-ctx.Done()
				logging.From(ctx).Info("Stopping task server")
				srv.Shutdown()
				return nil
			})

			if metricsAddr != "" {
				r := chi.NewRouter()
				r.Method(http.MethodGet, "/metrics", metrics.Handler())
				r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				})
				listenAndServe(ctx, eg, &http.Server{
					Addr:              metricsAddr,
					Handler:           r,
					ReadHeaderTimeout: 30 * time.Second,
				})
			}

			return eg.Wait()
		},
	}
}
