package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

func runChannelRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put then Get returns the channel", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := model.ProfileID(uniqueID())
		ch := &model.Channel{ID: "chan-1", ResourceID: "res-1", ProfileID: profileID}

		gt.NoError(t, repo.Channel().Put(ctx, ch)).Required()

		got, err := repo.Channel().Get(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Value(t, *got).Equal(*ch)
	})

	t.Run("Put replaces the stored channel", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := model.ProfileID(uniqueID())

		gt.NoError(t, repo.Channel().Put(ctx, &model.Channel{ID: "a", ResourceID: "ra", ProfileID: profileID})).Required()
		gt.NoError(t, repo.Channel().Put(ctx, &model.Channel{ID: "b", ResourceID: "rb", ProfileID: profileID})).Required()

		got, err := repo.Channel().Get(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal("b")
		gt.Value(t, got.ResourceID).Equal("rb")
	})

	t.Run("Get on unknown profile returns nil", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.Channel().Get(context.Background(), model.ProfileID(uniqueID()))
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Delete removes the channel", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := model.ProfileID(uniqueID())

		gt.NoError(t, repo.Channel().Put(ctx, &model.Channel{ID: "a", ResourceID: "ra", ProfileID: profileID})).Required()
		gt.NoError(t, repo.Channel().Delete(ctx, profileID)).Required()

		got, err := repo.Channel().Get(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})
}

func TestMemoryChannelRepository(t *testing.T) {
	runChannelRepositoryTest(t, newMemoryRepository)
}

func TestRedisChannelRepository(t *testing.T) {
	runChannelRepositoryTest(t, newRedisRepository)
}

func TestFirestoreChannelRepository(t *testing.T) {
	runChannelRepositoryTest(t, newFirestoreRepository)
}
