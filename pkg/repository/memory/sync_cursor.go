package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type syncCursorRepository struct {
	mu     sync.RWMutex
	tokens map[model.ProfileID]string
}

func newSyncCursorRepository() *syncCursorRepository {
	return &syncCursorRepository{
		tokens: make(map[model.ProfileID]string),
	}
}

func (r *syncCursorRepository) GetSyncToken(ctx context.Context, profileID model.ProfileID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tokens[profileID], nil
}

func (r *syncCursorRepository) PutSyncToken(ctx context.Context, profileID model.ProfileID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[profileID] = token
	return nil
}

func (r *syncCursorRepository) DeleteSyncToken(ctx context.Context, profileID model.ProfileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, profileID)
	return nil
}
