package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/service/calendar"
	"github.com/secmon-lab/ticketcal/pkg/utils/errutil"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
	"github.com/secmon-lab/ticketcal/pkg/utils/metrics"
)

// ChannelUseCase keeps one live push-notification channel per profile
type ChannelUseCase struct {
	repo         interfaces.Repository
	calendars    calendar.Factory
	dispatcher   interfaces.Dispatcher
	baseURL      string
	apiToken     string
	renewLead    time.Duration
	now          func() time.Time
	newChannelID func() string
}

// HookURL is the address the calendar posts notifications of a profile to
func HookURL(baseURL string, profileID model.ProfileID) string {
	base := strings.TrimRight(baseURL, "/")
	return base + "/hooks/calendar/" + url.PathEscape(profileID.String())
}

// Setup registers a new channel and schedules its renewal. The channel is stored only once
// the calendar confirms it with a sync notification (see Save).
func (uc *ChannelUseCase) Setup(ctx context.Context, profileID model.ProfileID) (*model.ChannelRegistration, error) {
	if uc.calendars == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "calendar is required to set up channels")
	}

	cal, err := uc.calendars.ForProfile(ctx, profileID)
	if err != nil {
		uc.unscheduleUnauthorized(ctx, profileID, err)
		return nil, goerr.Wrap(err, "failed to open calendar", goerr.V(model.ProfileIDKey, profileID))
	}

	reg, err := cal.Watch(ctx, &calendar.WatchRequest{
		ChannelID: uc.newChannelID(),
		Token:     uc.apiToken,
		Address:   HookURL(uc.baseURL, profileID),
		TTL:       model.ChannelTTL,
	})
	if err != nil {
		uc.unscheduleUnauthorized(ctx, profileID, err)
		return nil, goerr.Wrap(err, "failed to register channel", goerr.V(model.ProfileIDKey, profileID))
	}
	metrics.ChannelRegistered()

	if err := uc.repo.Schedule().Put(ctx, profileID, reg.Expiration); err != nil {
		return nil, goerr.Wrap(err, "failed to schedule channel renewal", goerr.V(model.ProfileIDKey, profileID))
	}

	logging.From(ctx).Info("channel registered",
		"profile_id", profileID, "channel_id", reg.Channel.ID, "expiration", reg.Expiration)
	return reg, nil
}

// unscheduleUnauthorized drops the renewal entry of a profile that has to log in again.
// The next login schedules it anew.
func (uc *ChannelUseCase) unscheduleUnauthorized(ctx context.Context, profileID model.ProfileID, cause error) {
	if !errors.Is(cause, model.ErrCredentialsNotFound) {
		return
	}
	if err := uc.repo.Schedule().Remove(ctx, profileID); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to unschedule profile without credentials",
			goerr.V(model.ProfileIDKey, profileID)), "channel setup")
		return
	}
	logging.From(ctx).Warn("profile has no usable credentials, renewal unscheduled", "profile_id", profileID)
}

// Save makes channel the stored channel of its profile, stopping the previously stored one.
// Saving the already stored channel again is a no-op.
func (uc *ChannelUseCase) Save(ctx context.Context, channel *model.Channel) error {
	if err := channel.Validate(); err != nil {
		return goerr.Wrap(err, "invalid channel")
	}

	current, err := uc.repo.Channel().Get(ctx, channel.ProfileID)
	if err != nil {
		return goerr.Wrap(err, "failed to get stored channel", goerr.V(model.ProfileIDKey, channel.ProfileID))
	}
	if current != nil && current.Matches(channel) {
		return nil
	}

	if err := uc.Stop(ctx, channel.ProfileID); err != nil {
		return err
	}

	if err := uc.repo.Channel().Put(ctx, channel); err != nil {
		return goerr.Wrap(err, "failed to store channel",
			goerr.V(model.ProfileIDKey, channel.ProfileID), goerr.V(model.ChannelIDKey, channel.ID))
	}

	logging.From(ctx).Info("channel saved", "profile_id", channel.ProfileID, "channel_id", channel.ID)
	return nil
}

// Stop unregisters the stored channel of a profile, if any. A channel the calendar no longer
// knows is not an error.
func (uc *ChannelUseCase) Stop(ctx context.Context, profileID model.ProfileID) error {
	current, err := uc.repo.Channel().Get(ctx, profileID)
	if err != nil {
		return goerr.Wrap(err, "failed to get stored channel", goerr.V(model.ProfileIDKey, profileID))
	}
	if current == nil {
		return nil
	}
	if uc.calendars == nil {
		return goerr.Wrap(ErrNotConfigured, "calendar is required to stop channels")
	}

	cal, err := uc.calendars.ForProfile(ctx, profileID)
	if err != nil {
		return goerr.Wrap(err, "failed to open calendar", goerr.V(model.ProfileIDKey, profileID))
	}

	if err := cal.StopChannel(ctx, current); err != nil {
		if errors.Is(err, model.ErrChannelNotFound) {
			logging.From(ctx).Debug("stored channel already gone", "profile_id", profileID, "channel_id", current.ID)
			return nil
		}
		return goerr.Wrap(err, "failed to stop channel",
			goerr.V(model.ProfileIDKey, profileID), goerr.V(model.ChannelIDKey, current.ID))
	}
	return nil
}

// RenewDue dispatches a channel setup for every profile whose channel expires at or before
// now plus the renewal lead. One failed dispatch does not prevent the others.
func (uc *ChannelUseCase) RenewDue(ctx context.Context, now time.Time) ([]model.ProfileID, error) {
	if uc.dispatcher == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "dispatcher is required to renew channels")
	}

	due, err := uc.repo.Schedule().Due(ctx, now.Add(uc.renewLead))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read renewal schedule")
	}

	renewed := make([]model.ProfileID, 0, len(due))
	for _, profileID := range due {
		if err := uc.dispatcher.SetupChannel(ctx, profileID); err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to dispatch channel renewal",
				goerr.V(model.ProfileIDKey, profileID)), "channel renewal")
			continue
		}
		renewed = append(renewed, profileID)
	}

	if len(due) > 0 {
		logging.From(ctx).Info("channel renewals dispatched", "due", len(due), "dispatched", len(renewed))
	}
	return renewed, nil
}

// ChannelStatus is the renewal entry of a profile with its confirmed channel, if any
type ChannelStatus struct {
	ProfileID  model.ProfileID
	Expiration time.Time
	Channel    *model.Channel
}

// Expired reports whether the channel has expired at now
func (x *ChannelStatus) Expired(now time.Time) bool {
	return !x.Expiration.After(now)
}

// List returns the status of every scheduled profile, earliest expiration first
func (uc *ChannelUseCase) List(ctx context.Context) ([]*ChannelStatus, error) {
	entries, err := uc.repo.Schedule().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read renewal schedule")
	}

	statuses := make([]*ChannelStatus, 0, len(entries))
	for _, entry := range entries {
		channel, err := uc.repo.Channel().Get(ctx, entry.ProfileID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get stored channel", goerr.V(model.ProfileIDKey, entry.ProfileID))
		}
		statuses = append(statuses, &ChannelStatus{
			ProfileID:  entry.ProfileID,
			Expiration: entry.Expiration,
			Channel:    channel,
		})
	}
	return statuses, nil
}
