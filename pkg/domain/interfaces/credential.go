package interfaces

import (
	"context"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// CredentialRepository stores one OAuth credential per profile
type CredentialRepository interface {
	// Get returns model.ErrCredentialsNotFound when the profile never authorized
	// or the stored blob cannot be decoded
	Get(ctx context.Context, profileID model.ProfileID) (*model.Credential, error)

	// Put overwrites the credential of the profile
	Put(ctx context.Context, profileID model.ProfileID, cred *model.Credential) error

	// Delete removes the credential. Deleting a missing credential is not an error.
	Delete(ctx context.Context, profileID model.ProfileID) error
}
