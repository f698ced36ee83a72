package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/domain/types"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// Notification is a push notification received from the calendar
type Notification struct {
	ProfileID  model.ProfileID
	State      types.ResourceState
	ChannelID  string
	ResourceID string
}

// OnTicketCreatedOrUpdated dispatches the upsert of a ticket's calendar event
func (uc *UseCases) OnTicketCreatedOrUpdated(ctx context.Context, ticketID model.TicketID, overwrite bool) error {
	if err := ticketID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid ticket")
	}
	if uc.dispatcher == nil {
		return goerr.Wrap(ErrNotConfigured, "dispatcher is required")
	}

	if err := uc.dispatcher.FetchTicket(ctx, ticketID, overwrite); err != nil {
		return goerr.Wrap(err, "failed to dispatch ticket fetch", goerr.V(model.TicketIDKey, ticketID))
	}
	return nil
}

// OnCalendarNotification reacts to a calendar push notification. A sync notification confirms
// a newly registered channel; an exists notification announces changes and triggers a sync
// unless it comes from a channel other than the stored one.
func (uc *UseCases) OnCalendarNotification(ctx context.Context, n *Notification) error {
	if uc.dispatcher == nil {
		return goerr.Wrap(ErrNotConfigured, "dispatcher is required")
	}

	logger := logging.From(ctx).With("profile_id", n.ProfileID, "state", n.State, "channel_id", n.ChannelID)
	channel := &model.Channel{ID: n.ChannelID, ResourceID: n.ResourceID, ProfileID: n.ProfileID}

	switch n.State {
	case types.ResourceStateSync:
		if err := uc.dispatcher.SaveChannel(ctx, channel); err != nil {
			return goerr.Wrap(err, "failed to dispatch channel save",
				goerr.V(model.ProfileIDKey, n.ProfileID), goerr.V(model.ChannelIDKey, n.ChannelID))
		}

	case types.ResourceStateExists:
		current, err := uc.repo.Channel().Get(ctx, n.ProfileID)
		if err != nil {
			return goerr.Wrap(err, "failed to get stored channel", goerr.V(model.ProfileIDKey, n.ProfileID))
		}
		if current != nil && !current.Matches(channel) {
			logger.Info("ignoring notification from stale channel", "stored_channel_id", current.ID)
			return nil
		}

		if err := uc.dispatcher.MakeSync(ctx, n.ProfileID); err != nil {
			return goerr.Wrap(err, "failed to dispatch sync", goerr.V(model.ProfileIDKey, n.ProfileID))
		}

	default:
		logger.Debug("ignoring notification")
	}

	return nil
}

// OnOAuthCallback completes a login; see AuthUseCase.OnOAuthCallback
func (uc *UseCases) OnOAuthCallback(ctx context.Context, profileID model.ProfileID, code string) error {
	return uc.Auth.OnOAuthCallback(ctx, profileID, code)
}
