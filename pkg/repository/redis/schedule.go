package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type scheduleRepository struct {
	client *goredis.Client
	keys   *keyspace
}

var _ interfaces.ScheduleRepository = &scheduleRepository{}

func (r *scheduleRepository) key() string {
	return r.keys.key("schedule")
}

func (r *scheduleRepository) Put(ctx context.Context, profileID model.ProfileID, expiration time.Time) error {
	err := r.client.ZAdd(ctx, r.key(), goredis.Z{
		Score:  float64(expiration.Unix()),
		Member: profileID.String(),
	}).Err()
	if err != nil {
		return goerr.Wrap(err, "failed to put renewal schedule",
			goerr.V(model.ProfileIDKey, profileID),
			goerr.V("expiration", expiration))
	}
	return nil
}

func (r *scheduleRepository) Due(ctx context.Context, now time.Time) ([]model.ProfileID, error) {
	members, err := r.client.ZRangeByScore(ctx, r.key(), &goredis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query due renewals", goerr.V("now", now))
	}

	ids := make([]model.ProfileID, 0, len(members))
	for _, m := range members {
		id, err := model.ParseProfileID(m)
		if err != nil {
			return nil, goerr.Wrap(err, "corrupt renewal schedule member", goerr.V("member", m))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *scheduleRepository) Remove(ctx context.Context, profileID model.ProfileID) error {
	if err := r.client.ZRem(ctx, r.key(), profileID.String()).Err(); err != nil {
		return goerr.Wrap(err, "failed to remove renewal schedule", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}

func (r *scheduleRepository) List(ctx context.Context) ([]*model.RenewalEntry, error) {
	zs, err := r.client.ZRangeWithScores(ctx, r.key(), 0, -1).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list renewal schedule")
	}

	entries := make([]*model.RenewalEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := model.ParseProfileID(member)
		if err != nil {
			return nil, goerr.Wrap(err, "corrupt renewal schedule member", goerr.V("member", z.Member))
		}
		entries = append(entries, &model.RenewalEntry{
			ProfileID:  id,
			Expiration: time.Unix(int64(z.Score), 0),
		})
	}
	return entries, nil
}
