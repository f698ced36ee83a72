package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type credentialRepository struct {
	mu    sync.RWMutex
	blobs map[model.ProfileID][]byte
}

func newCredentialRepository() *credentialRepository {
	return &credentialRepository{
		blobs: make(map[model.ProfileID][]byte),
	}
}

func (r *credentialRepository) Get(ctx context.Context, profileID model.ProfileID) (*model.Credential, error) {
	r.mu.RLock()
	raw, ok := r.blobs[profileID]
	r.mu.RUnlock()

	if !ok {
		return nil, goerr.Wrap(model.ErrCredentialsNotFound, "no credential stored", goerr.V(model.ProfileIDKey, profileID))
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

	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[profileID] = raw
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, profileID model.ProfileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blobs, profileID)
	return nil
}
