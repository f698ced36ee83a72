package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type scheduleRepository struct {
	mu          sync.RWMutex
	expirations map[model.ProfileID]time.Time
}

func newScheduleRepository() *scheduleRepository {
	return &scheduleRepository{
		expirations: make(map[model.ProfileID]time.Time),
	}
}

func (r *scheduleRepository) Put(ctx context.Context, profileID model.ProfileID, expiration time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same resolution as the redis sorted set score
	r.expirations[profileID] = expiration.Truncate(time.Second)
	return nil
}

func (r *scheduleRepository) Due(ctx context.Context, now time.Time) ([]model.ProfileID, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var due []model.ProfileID
	for _, e := range entries {
		if e.Expiration.After(now) {
			break
		}
		due = append(due, e.ProfileID)
	}
	return due, nil
}

func (r *scheduleRepository) Remove(ctx context.Context, profileID model.ProfileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.expirations, profileID)
	return nil
}

func (r *scheduleRepository) List(ctx context.Context) ([]*model.RenewalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*model.RenewalEntry, 0, len(r.expirations))
	for id, exp := range r.expirations {
		entries = append(entries, &model.RenewalEntry{ProfileID: id, Expiration: exp})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Expiration.Equal(entries[j].Expiration) {
			return entries[i].ProfileID < entries[j].ProfileID
		}
		return entries[i].Expiration.Before(entries[j].Expiration)
	})
	return entries, nil
}
