package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrCredentialsNotFound means the profile never authorized (or its grant was revoked).
	// It is an expected state that requires a new login, not a failure.
	ErrCredentialsNotFound = goerr.New("credentials not found")

	// ErrMalformedTicket means the ticket lacks parseable scheduling fields. Permanent.
	ErrMalformedTicket = goerr.New("malformed ticket")

	// ErrChannelNotFound means a notification channel to stop is already gone
	ErrChannelNotFound = goerr.New("channel not found")

	// ErrEventNotFound means a calendar event to patch or delete is already gone
	ErrEventNotFound = goerr.New("event not found")

	// ErrSyncTokenInvalidated means the calendar rejected a sync token and a full sync is required
	ErrSyncTokenInvalidated = goerr.New("sync token invalidated")

	// ErrBackendUnavailable marks transient backend failures that should be retried
	ErrBackendUnavailable = goerr.New("backend unavailable")

	// ErrUnauthorized means a caller presented a wrong API token
	ErrUnauthorized = goerr.New("unauthorized")
)

// Context keys for error values
const (
	ProfileIDKey = "profile_id"
	TicketIDKey  = "ticket_id"
	EventIDKey   = "event_id"
	ChannelIDKey = "channel_id"
	FieldKey     = "field"
)
