package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

func runCredentialRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put then Get returns the same credential", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := model.ProfileID(uniqueID())

		cred := &model.Credential{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
			Expiry:       time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
			Scope:        "https://www.googleapis.com/auth/calendar",
		}
		gt.NoError(t, repo.Credential().Put(ctx, profileID, cred)).Required()

		got, err := repo.Credential().Get(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AccessToken).Equal("access-1")
		gt.Value(t, got.RefreshToken).Equal("refresh-1")
		gt.Value(t, got.TokenType).Equal("Bearer")
		gt.Bool(t, got.Expiry.Equal(cred.Expiry)).True()
		gt.Value(t, got.Version).Equal(model.CredentialVersion)
	})

	t.Run("Get on unknown profile returns ErrCredentialsNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Credential().Get(context.Background(), model.ProfileID(uniqueID()))
		gt.Error(t, err).Is(model.ErrCredentialsNotFound)
	})

	t.Run("Put overwrites the previous credential", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := model.ProfileID(uniqueID())

		gt.NoError(t, repo.Credential().Put(ctx, profileID, &model.Credential{AccessToken: "old", RefreshToken: "r"})).Required()
		gt.NoError(t, repo.Credential().Put(ctx, profileID, &model.Credential{AccessToken: "new", RefreshToken: "r"})).Required()

		got, err := repo.Credential().Get(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AccessToken).Equal("new")
	})

	t.Run("Delete removes the credential and is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := model.ProfileID(uniqueID())

		gt.NoError(t, repo.Credential().Put(ctx, profileID, &model.Credential{AccessToken: "a"})).Required()
		gt.NoError(t, repo.Credential().Delete(ctx, profileID)).Required()
		gt.NoError(t, repo.Credential().Delete(ctx, profileID)).Required()

		_, err := repo.Credential().Get(ctx, profileID)
		gt.Error(t, err).Is(model.ErrCredentialsNotFound)
	})
}

func TestMemoryCredentialRepository(t *testing.T) {
	runCredentialRepositoryTest(t, newMemoryRepository)
}

func TestRedisCredentialRepository(t *testing.T) {
	runCredentialRepositoryTest(t, newRedisRepository)
}

func TestFirestoreCredentialRepository(t *testing.T) {
	runCredentialRepositoryTest(t, newFirestoreRepository)
}
