package calendar

import (
	"context"
	"time"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// Service is the calendar of one profile
type Service interface {
	// InsertEvent creates the event and returns it with its assigned ID
	InsertEvent(ctx context.Context, event *model.CalendarEvent) (*model.CalendarEvent, error)

	// PatchEvent updates an existing event in place. ErrEventNotFound if it is gone.
	PatchEvent(ctx context.Context, eventID model.EventID, event *model.CalendarEvent) (*model.CalendarEvent, error)

	// DeleteEvent removes an event. ErrEventNotFound if it is already gone.
	DeleteEvent(ctx context.Context, eventID model.EventID) error

	// ListEvents returns one page of events. With a sync token only changes since that
	// token are returned; ErrSyncTokenInvalidated when the calendar no longer accepts it.
	ListEvents(ctx context.Context, pageToken, syncToken string) (*EventPage, error)

	// Watch registers a push-notification channel on the calendar
	Watch(ctx context.Context, req *WatchRequest) (*model.ChannelRegistration, error)

	// StopChannel unregisters a channel. ErrChannelNotFound if it is already gone.
	StopChannel(ctx context.Context, channel *model.Channel) error
}

// Factory builds the calendar Service of a profile from its stored credential.
// It fails with ErrCredentialsNotFound when the profile never logged in.
type Factory interface {
	ForProfile(ctx context.Context, profileID model.ProfileID) (Service, error)
}

// EventPage is one page of an event listing
type EventPage struct {
	Items         []*model.CalendarEvent
	NextPageToken string
	// NextSyncToken is only set on the last page
	NextSyncToken string
}

// WatchRequest describes a channel to register
type WatchRequest struct {
	ChannelID string
	Token     string
	Address   string
	TTL       time.Duration
}
