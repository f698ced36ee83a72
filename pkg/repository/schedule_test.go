package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

func runScheduleRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Due returns expired profiles earliest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Schedule().Put(ctx, 3, base.Add(-1*time.Minute))).Required()
		gt.NoError(t, repo.Schedule().Put(ctx, 1, base.Add(-1*time.Hour))).Required()
		gt.NoError(t, repo.Schedule().Put(ctx, 2, base.Add(time.Hour))).Required()

		due, err := repo.Schedule().Due(ctx, base)
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(2)
		gt.Value(t, due[0]).Equal(model.ProfileID(1))
		gt.Value(t, due[1]).Equal(model.ProfileID(3))
	})

	t.Run("expiration equal to now is due", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Schedule().Put(ctx, 5, base)).Required()
		due, err := repo.Schedule().Due(ctx, base)
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(1)
	})

	t.Run("Put replaces the profile entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Schedule().Put(ctx, 9, base.Add(-time.Hour))).Required()
		gt.NoError(t, repo.Schedule().Put(ctx, 9, base.Add(time.Hour))).Required()

		entries, err := repo.Schedule().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
		gt.Bool(t, entries[0].Expiration.Equal(base.Add(time.Hour))).True()

		due, err := repo.Schedule().Due(ctx, base)
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(0)
	})

	t.Run("Remove drops the entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Schedule().Put(ctx, 4, base.Add(-time.Hour))).Required()
		gt.NoError(t, repo.Schedule().Remove(ctx, 4)).Required()

		due, err := repo.Schedule().Due(ctx, base)
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(0)
	})
}

func TestMemoryScheduleRepository(t *testing.T) {
	runScheduleRepositoryTest(t, newMemoryRepository)
}

func TestRedisScheduleRepository(t *testing.T) {
	runScheduleRepositoryTest(t, newRedisRepository)
}

func TestFirestoreScheduleRepository(t *testing.T) {
	runScheduleRepositoryTest(t, newFirestoreRepository)
}
