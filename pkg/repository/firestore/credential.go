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

const credentialsCollection = "credentials"

type credentialRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.CredentialRepository = &credentialRepository{}

func newCredentialRepository(client *firestore.Client) *credentialRepository {
	return &credentialRepository{client: client}
}

// credentialDoc keeps the encoded credential as an opaque blob
type credentialDoc struct {
	Blob      []byte    `firestore:"blob"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (r *credentialRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, credentialsCollection))
}

func (r *credentialRepository) Get(ctx context.Context, profileID model.ProfileID) (*model.Credential, error) {
	doc, err := r.collection().Doc(profileID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrCredentialsNotFound, "no credential stored", goerr.V(model.ProfileIDKey, profileID))
		}
		return nil, goerr.Wrap(err, "failed to get credential", goerr.V(model.ProfileIDKey, profileID))
	}

	var d credentialDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal credential", goerr.V(model.ProfileIDKey, profileID))
	}

	cred, err := model.DecodeCredential(d.Blob)
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

	d := &credentialDoc{Blob: raw, UpdatedAt: time.Now().UTC()}
	if _, err := r.collection().Doc(profileID.String()).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put credential", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, profileID model.ProfileID) error {
	if _, err := r.collection().Doc(profileID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete credential", goerr.V(model.ProfileIDKey, profileID))
	}
	return nil
}
