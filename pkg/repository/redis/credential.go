package redis

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type credentialRepository struct {
	client *goredis.Client
	keys   *keyspace
}

var _ interfaces.CredentialRepository = &credentialRepository{}

func (r *credentialRepository) key(profileID model.ProfileID) string {
	return r.keys.key("oauth2", profileID.String())
}

func (r *credentialRepository) Get(ctx context.Context, profileID model.ProfileID) (*model.Credential, error) {
	raw, err := r.client.Get(ctx, r.key(profileID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, goerr.Wrap(model.ErrCredentialsNotFound, "no credential stored", goerr.V(model.ProfileIDKey, profileID))
		}
		return nil, goerr.Wrap(err, "failed to get credential", goerr.V(model.ProfileIDKey, profileID))
	}

	cred, err := model.DecodeCredential(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode credential", goerr.V(model.ProfileIDKey, profileID))
	}
	return cred, nil
}

func (r *credentialRepository) Put(ctx context.Context, profileID model.ProfileID, cred *model.Credential) error {
	raw, err := cred.Encode()
	if err != nil {
		return goerr.Wrap(err, "failed to encode credential", goerr.V(model.ProfileIDKey, profileID))
	}

	if err := r.client.Set(ctx, r.key(profileID), raw, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to put credential", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, profileID model.ProfileID) error {
	if err := r.client.Del(ctx, r.key(profileID)).Err(); err != nil {
		return goerr.Wrap(err, "failed to delete credential", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}
