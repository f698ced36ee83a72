package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const channelsCollection = "channels"

type channelRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ChannelRepository = &channelRepository{}

func newChannelRepository(client *firestore.Client) *channelRepository {
	return &channelRepository{client: client}
}

type channelDoc struct {
	ChannelID  string `firestore:"channel_id"`
	ResourceID string `firestore:"resource_id"`
	ProfileID  int64  `firestore:"profile_id"`
}

func (r *channelRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, channelsCollection))
}

func (r *channelRepository) Get(ctx context.Context, profileID model.ProfileID) (*model.Channel, error) {
	doc, err := r.collection().Doc(profileID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get channel", goerr.V(model.ProfileIDKey, profileID))
	}

	var d channelDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal channel", goerr.V(model.ProfileIDKey, profileID))
	}

	return &model.Channel{
		ID:         d.ChannelID,
		ResourceID: d.ResourceID,
		ProfileID:  model.ProfileID(d.ProfileID),
	}, nil
}

func (r *channelRepository) Put(ctx context.Context, channel *model.Channel) error {
	if err := channel.Validate(); err != nil {
		return goerr.Wrap(err, "invalid channel")
	}

	d := &channelDoc{
		ChannelID:  channel.ID,
		ResourceID: channel.ResourceID,
		ProfileID:  int64(channel.ProfileID),
	}
	if _, err := r.collection().Doc(channel.ProfileID.String()).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put channel",
			goerr.V(model.ProfileIDKey, channel.ProfileID),
			goerr.V(model.ChannelIDKey, channel.ID))
	}
	return nil
}

func (r *channelRepository) Delete(ctx context.Context, profileID model.ProfileID) error {
	if _, err := r.collection().Doc(profileID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete channel", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}
