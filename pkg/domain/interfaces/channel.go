package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// ChannelRepository keeps the confirmed notification channel of each profile
type ChannelRepository interface {
	// Get returns nil without error when no channel is stored
	Get(ctx context.Context, profileID model.ProfileID) (*model.Channel, error)
	Put(ctx context.Context, channel *model.Channel) error
	Delete(ctx context.Context, profileID model.ProfileID) error
}

// ScheduleRepository is the renewal schedule: one expiration per profile
type ScheduleRepository interface {
	// Put registers or replaces the expiration of a profile
	Put(ctx context.Context, profileID model.ProfileID, expiration time.Time) error

	// Due returns profiles whose expiration is at or before now, earliest first
	Due(ctx context.Context, now time.Time) ([]model.ProfileID, error)

	// Remove drops the profile from the schedule
	Remove(ctx context.Context, profileID model.ProfileID) error

	// List returns all entries, earliest first
	List(ctx context.Context) ([]*model.RenewalEntry, error)
}
