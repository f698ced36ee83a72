package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const syncCursorsCollection = "sync_cursors"

type syncCursorRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.SyncCursorRepository = &syncCursorRepository{}

func newSyncCursorRepository(client *firestore.Client) *syncCursorRepository {
	return &syncCursorRepository{client: client}
}

type syncCursorDoc struct {
	SyncToken string    `firestore:"sync_token"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (r *syncCursorRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, syncCursorsCollection))
}

func (r *syncCursorRepository) GetSyncToken(ctx context.Context, profileID model.ProfileID) (string, error) {
	doc, err := r.collection().Doc(profileID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get sync token", goerr.V(model.ProfileIDKey, profileID))
	}

	var d syncCursorDoc
	if err := doc.DataTo(&d); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal sync token", goerr.V(model.ProfileIDKey, profileID))
	}
	return d.SyncToken, nil
}

func (r *syncCursorRepository) PutSyncToken(ctx context.Context, profileID model.ProfileID, token string) error {
	d := &syncCursorDoc{SyncToken: token, UpdatedAt: time.Now().UTC()}
	if _, err := r.collection().Doc(profileID.String()).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put sync token", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}

func (r *syncCursorRepository) DeleteSyncToken(ctx context.Context, profileID model.ProfileID) error {
	if _, err := r.collection().Doc(profileID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete sync token", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}
