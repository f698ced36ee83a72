package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ChannelTTL is the lifetime requested for push-notification channels (the calendar's maximum)
const ChannelTTL = 30 * 24 * time.Hour

// Channel is an active push-notification subscription on a profile's calendar
type Channel struct {
	ID         string
	ResourceID string
	ProfileID  ProfileID
}

// Validate checks if the Channel identity is complete
func (x *Channel) Validate() error {
	if x.ID == "" {
		return goerr.New("channel ID is required", goerr.V(ProfileIDKey, x.ProfileID))
	}
	if x.ResourceID == "" {
		return goerr.New("resource ID is required", goerr.V(ChannelIDKey, x.ID))
	}
	return nil
}

// Matches reports whether other identifies the same subscription
func (x *Channel) Matches(other *Channel) bool {
	return x.ID == other.ID && x.ResourceID == other.ResourceID
}

// ChannelRegistration is the result of registering a channel with the calendar
type ChannelRegistration struct {
	Channel    Channel
	Expiration time.Time
}

// RenewalEntry is one row of the renewal schedule
type RenewalEntry struct {
	ProfileID  ProfileID
	Expiration time.Time
}
