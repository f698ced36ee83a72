package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	httpctrl "github.com/secmon-lab/ticketcal/pkg/controller/http"
	"github.com/secmon-lab/ticketcal/pkg/service/worker"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

const shutdownTimeout = 10 * time.Second

// listenAndServe runs server until ctx is done and then shuts it down gracefully
func listenAndServe(ctx context.Context, eg *errgroup.Group, server *http.Server) {
	eg.Go(func() error {
		logging.From(ctx).Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "failed to start server", goerr.V("addr", server.Addr))
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shutdown server gracefully")
		}
		logging.From(ctx).Info("HTTP server shutdown completed", "addr", server.Addr)
		return nil
	})
}

func cmdServe() *cli.Command {
	var addr string
	var rtCfg runtimeConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TICKETCAL_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, rtCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook and OAuth HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := rtCfg.build(ctx, dispatchConfigured)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			// Without a queue nobody else runs the renewal sweep
			var renewal *worker.RenewalWorker
			if rt.inline != nil {
				renewal = worker.NewRenewalWorker(rt.uc, time.Minute)
				if err := renewal.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start renewal worker")
				}
				defer renewal.Stop()
			}

			handler := httpctrl.New(rt.uc,
				httpctrl.WithAPIToken(rtCfg.app.APIToken()),
				httpctrl.WithAuth(rt.uc.Auth),
				httpctrl.WithRedirectURL(rtCfg.zendesk.URL()),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			eg, ctx := errgroup.WithContext(ctx)
			listenAndServe(ctx, eg, server)
			return eg.Wait()
		},
	}
}
