package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"google.golang.org/api/iterator"
)

const schedulesCollection = "renewal_schedule"

type scheduleRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ScheduleRepository = &scheduleRepository{}

func newScheduleRepository(client *firestore.Client) *scheduleRepository {
	return &scheduleRepository{client: client}
}

type scheduleDoc struct {
	ProfileID  int64     `firestore:"profile_id"`
	Expiration time.Time `firestore:"expiration"`
}

func (r *scheduleRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, schedulesCollection))
}

func (r *scheduleRepository) Put(ctx context.Context, profileID model.ProfileID, expiration time.Time) error {
	d := &scheduleDoc{
		ProfileID:  int64(profileID),
		Expiration: expiration.UTC().Truncate(time.Second),
	}
	if _, err := r.collection().Doc(profileID.String()).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put renewal schedule", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}

func (r *scheduleRepository) Due(ctx context.Context, now time.Time) ([]model.ProfileID, error) {
	iter := r.collection().
		Where("expiration", "<=", now.UTC()).
		OrderBy("expiration", firestore.Asc).
		Documents(ctx)

	entries, err := readScheduleDocs(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query due renewals", goerr.V("now", now))
	}

	ids := make([]model.ProfileID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProfileID)
	}
	return ids, nil
}

func (r *scheduleRepository) Remove(ctx context.Context, profileID model.ProfileID) error {
	if _, err := r.collection().Doc(profileID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to remove renewal schedule", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}

func (r *scheduleRepository) List(ctx context.Context) ([]*model.RenewalEntry, error) {
	iter := r.collection().OrderBy("expiration", firestore.Asc).Documents(ctx)
	entries, err := readScheduleDocs(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list renewal schedule")
	}
	return entries, nil
}

func readScheduleDocs(iter *firestore.DocumentIterator) ([]*model.RenewalEntry, error) {
	defer iter.Stop()

	var entries []*model.RenewalEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate renewal schedule")
		}

		var d scheduleDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal renewal schedule", goerr.V("docID", doc.Ref.ID))
		}
		entries = append(entries, &model.RenewalEntry{
			ProfileID:  model.ProfileID(d.ProfileID),
			Expiration: d.Expiration,
		})
	}
	return entries, nil
}
