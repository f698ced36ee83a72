package redis

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

const (
	fieldChannelID  = "channel_id"
	fieldResourceID = "resource_id"
)

type channelRepository struct {
	client *goredis.Client
	keys   *keyspace
}

var _ interfaces.ChannelRepository = &channelRepository{}

func (r *channelRepository) key(profileID model.ProfileID) string {
	return r.keys.key("notifications", profileID.String())
}

func (r *channelRepository) Get(ctx context.Context, profileID model.ProfileID) (*model.Channel, error) {
	values, err := r.client.HGetAll(ctx, r.key(profileID)).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get channel", goerr.V(model.ProfileIDKey, profileID))
	}
	if values[fieldChannelID] == "" {
		return nil, nil
	}

	return &model.Channel{
		ID:         values[fieldChannelID],
		ResourceID: values[fieldResourceID],
		ProfileID:  profileID,
	}, nil
}

func (r *channelRepository) Put(ctx context.Context, channel *model.Channel) error {
	if err := channel.Validate(); err != nil {
		return goerr.Wrap(err, "invalid channel")
	}

	err := r.client.HSet(ctx, r.key(channel.ProfileID), map[string]any{
		fieldChannelID:  channel.ID,
		fieldResourceID: channel.ResourceID,
	}).Err()
	if err != nil {
		return goerr.Wrap(err, "failed to put channel",
			goerr.V(model.ProfileIDKey, channel.ProfileID),
			goerr.V(model.ChannelIDKey, channel.ID))
	}
	return nil
}

func (r *channelRepository) Delete(ctx context.Context, profileID model.ProfileID) error {
	if err := r.client.Del(ctx, r.key(profileID)).Err(); err != nil {
		return goerr.Wrap(err, "failed to delete channel", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}
