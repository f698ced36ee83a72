package redis

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type syncCursorRepository struct {
	client *goredis.Client
	keys   *keyspace
}

var _ interfaces.SyncCursorRepository = &syncCursorRepository{}

func (r *syncCursorRepository) key(profileID model.ProfileID) string {
	return r.keys.key("sync", profileID.String())
}

func (r *syncCursorRepository) GetSyncToken(ctx context.Context, profileID model.ProfileID) (string, error) {
	token, err := r.client.Get(ctx, r.key(profileID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get sync token", goerr.V(model.ProfileIDKey, profileID))
	}
	return token, nil
}

func (r *syncCursorRepository) PutSyncToken(ctx context.Context, profileID model.ProfileID, token string) error {
	if err := r.client.Set(ctx, r.key(profileID), token, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to put sync token", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}

func (r *syncCursorRepository) DeleteSyncToken(ctx context.Context, profileID model.ProfileID) error {
	if err := r.client.Del(ctx, r.key(profileID)).Err(); err != nil {
		return goerr.Wrap(err, "failed to delete sync token", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}
