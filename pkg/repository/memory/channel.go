package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type channelRepository struct {
	mu       sync.RWMutex
	channels map[model.ProfileID]model.Channel
}

func newChannelRepository() *channelRepository {
	return &channelRepository{
		channels: make(map[model.ProfileID]model.Channel),
	}
}

func (r *channelRepository) Get(ctx context.Context, profileID model.ProfileID) (*model.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[profileID]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (r *channelRepository) Put(ctx context.Context, channel *model.Channel) error {
	if err := channel.Validate(); err != nil {
		return goerr.Wrap(err, "invalid channel")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[channel.ProfileID] = *channel
	return nil
}

func (r *channelRepository) Delete(ctx context.Context, profileID model.ProfileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, profileID)
	return nil
}
