package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

func cmdRenew() *cli.Command {
	var rtCfg runtimeConfig

	return &cli.Command{
		Name:  "renew",
		Usage: "Run the channel renewal sweep once",
		Flags: rtCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := rtCfg.build(ctx, dispatchConfigured)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if err := rt.uc.RenewChannels(ctx); err != nil {
				return goerr.Wrap(err, "failed to renew channels")
			}
			logging.From(ctx).Info("Renewal sweep dispatched")
			return nil
		},
	}
}

func cmdSync() *cli.Command {
	var rtCfg runtimeConfig
	var profile int64

	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:        "profile",
			Aliases:     []string{"p"},
			Usage:       "Profile (assignee) ID whose calendar is synchronized",
			Required:    true,
			Destination: &profile,
		},
	}
	flags = append(flags, rtCfg.Flags()...)

	return &cli.Command{
		Name:  "sync",
		Usage: "Pull calendar changes of one profile into its tickets",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			profileID := model.ProfileID(profile)
			if err := profileID.Validate(); err != nil {
				return err
			}

			// Pages are applied in this process so that the command returns when they are written
			rt, err := rtCfg.build(ctx, dispatchInline)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if err := rt.uc.MakeSync(ctx, profileID); err != nil {
				return goerr.Wrap(err, "failed to sync profile", goerr.V(model.ProfileIDKey, profileID))
			}
			logging.From(ctx).Info("Sync completed", "profile_id", profileID)
			return nil
		},
	}
}

func cmdChannels() *cli.Command {
	var rtCfg runtimeConfig

	return &cli.Command{
		Name:  "channels",
		Usage: "Show the renewal schedule and confirmed notification channel of every profile",
		Flags: rtCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := rtCfg.build(ctx, dispatchInline)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			statuses, err := rt.uc.Channel.List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list channels")
			}

			logger := logging.From(ctx)
			now := time.Now()
			for _, st := range statuses {
				attrs := []any{
					"profile_id", st.ProfileID,
					"expiration", st.Expiration,
					"expired", st.Expired(now),
				}
				if st.Channel != nil {
					attrs = append(attrs, "channel_id", st.Channel.ID, "resource_id", st.Channel.ResourceID)
				} else {
					attrs = append(attrs, "confirmed", false)
				}
				logger.Info("Channel", attrs...)
			}
			logger.Info("Channels listed", "count", len(statuses))
			return nil
		},
	}
}
