package calendar

import (
	"context"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/calendar/v3"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/backoff"
)

const (
	// CalendarID is the calendar every operation targets
	CalendarID = "primary"

	listPageSize = 250
)

// client implements Service over the Google Calendar API
type client struct {
	api       *calendar.Service
	profileID model.ProfileID
	policy    backoff.Policy
}

var _ Service = &client{}

func newClient(api *calendar.Service, profileID model.ProfileID, policy backoff.Policy) *client {
	return &client{api: api, profileID: profileID, policy: policy}
}

func (c *client) do(ctx context.Context, fn func(ctx context.Context) error) error {
	return backoff.Do(ctx, c.policy, isTransient, fn)
}

func (c *client) InsertEvent(ctx context.Context, event *model.CalendarEvent) (*model.CalendarEvent, error) {
	var created *calendar.Event
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.api.Events.Insert(CalendarID, toAPIEvent(event)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, mapError(err, "failed to insert event", nil, goerr.V(model.ProfileIDKey, c.profileID))
	}
	return fromAPIEvent(created), nil
}

func (c *client) PatchEvent(ctx context.Context, eventID model.EventID, event *model.CalendarEvent) (*model.CalendarEvent, error) {
	var patched *calendar.Event
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		patched, err = c.api.Events.Patch(CalendarID, eventID.String(), toAPIEvent(event)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, mapError(err, "failed to patch event", model.ErrEventNotFound,
			goerr.V(model.ProfileIDKey, c.profileID), goerr.V(model.EventIDKey, eventID))
	}
	return fromAPIEvent(patched), nil
}

func (c *client) DeleteEvent(ctx context.Context, eventID model.EventID) error {
	err := c.do(ctx, func(ctx context.Context) error {
		return c.api.Events.Delete(CalendarID, eventID.String()).Context(ctx).Do()
	})
	if err != nil {
		return mapError(err, "failed to delete event", model.ErrEventNotFound,
			goerr.V(model.ProfileIDKey, c.profileID), goerr.V(model.EventIDKey, eventID))
	}
	return nil
}

func (c *client) ListEvents(ctx context.Context, pageToken, syncToken string) (*EventPage, error) {
	var resp *calendar.Events
	err := c.do(ctx, func(ctx context.Context) error {
		call := c.api.Events.List(CalendarID).MaxResults(listPageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		if syncToken != "" {
			call = call.SyncToken(syncToken)
		}
		var err error
		resp, err = call.Do()
		return err
	})
	if err != nil {
		var gone error
		if syncToken != "" {
			gone = model.ErrSyncTokenInvalidated
		}
		return nil, mapError(err, "failed to list events", gone,
			goerr.V(model.ProfileIDKey, c.profileID), goerr.V("page_token", pageToken))
	}

	page := &EventPage{
		Items:         make([]*model.CalendarEvent, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
		NextSyncToken: resp.NextSyncToken,
	}
	for _, item := range resp.Items {
		page.Items = append(page.Items, fromAPIEvent(item))
	}
	return page, nil
}

func (c *client) Watch(ctx context.Context, req *WatchRequest) (*model.ChannelRegistration, error) {
	ttl := req.TTL
	if ttl <= 0 {
		ttl = model.ChannelTTL
	}

	var ch *calendar.Channel
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		ch, err = c.api.Events.Watch(CalendarID, &calendar.Channel{
			Id:      req.ChannelID,
			Token:   req.Token,
			Type:    "web_hook",
			Address: req.Address,
			Params:  map[string]string{"ttl": strconv.FormatInt(int64(ttl/time.Second), 10)},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, mapError(err, "failed to watch calendar", nil,
			goerr.V(model.ProfileIDKey, c.profileID), goerr.V(model.ChannelIDKey, req.ChannelID))
	}

	return &model.ChannelRegistration{
		Channel: model.Channel{
			ID:         ch.Id,
			ResourceID: ch.ResourceId,
			ProfileID:  c.profileID,
		},
		// Expiration is reported in milliseconds since epoch
		Expiration: time.UnixMilli(ch.Expiration),
	}, nil
}

func (c *client) StopChannel(ctx context.Context, channel *model.Channel) error {
	err := c.do(ctx, func(ctx context.Context) error {
		return c.api.Channels.Stop(&calendar.Channel{
			Id:         channel.ID,
			ResourceId: channel.ResourceID,
		}).Context(ctx).Do()
	})
	if err != nil {
		return mapStopError(err, "failed to stop channel",
			goerr.V(model.ProfileIDKey, c.profileID), goerr.V(model.ChannelIDKey, channel.ID))
	}
	return nil
}
