package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

func runLinkRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Bind writes forward and reverse entries", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := uniqueID()
		link := &model.Link{
			TicketID:  model.TicketID(id),
			EventID:   model.EventID(fmt.Sprintf("evt%d", id)),
			ProfileID: 7,
		}

		gt.NoError(t, repo.Link().Bind(ctx, link)).Required()

		got, err := repo.Link().GetByTicket(ctx, link.TicketID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Value(t, got.EventID).Equal(link.EventID)
		gt.Value(t, got.ProfileID).Equal(link.ProfileID)

		ticketID, ok, err := repo.Link().GetTicketByEvent(ctx, link.EventID)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.Value(t, ticketID).Equal(link.TicketID)
	})

	t.Run("lookups of unknown ids report absence", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := uniqueID()

		got, err := repo.Link().GetByTicket(ctx, model.TicketID(id))
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()

		_, ok, err := repo.Link().GetTicketByEvent(ctx, model.EventID(fmt.Sprintf("missing%d", id)))
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("rebinding a ticket replaces its forward entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := uniqueID()
		ticketID := model.TicketID(id)
		oldEvent := model.EventID(fmt.Sprintf("old%d", id))
		newEvent := model.EventID(fmt.Sprintf("new%d", id))

		gt.NoError(t, repo.Link().Bind(ctx, &model.Link{TicketID: ticketID, EventID: oldEvent, ProfileID: 1})).Required()
		gt.NoError(t, repo.Link().UnbindEvent(ctx, oldEvent)).Required()
		gt.NoError(t, repo.Link().Bind(ctx, &model.Link{TicketID: ticketID, EventID: newEvent, ProfileID: 2})).Required()

		got, err := repo.Link().GetByTicket(ctx, ticketID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.EventID).Equal(newEvent)
		gt.Value(t, got.ProfileID).Equal(model.ProfileID(2))

		_, ok, err := repo.Link().GetTicketByEvent(ctx, oldEvent)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("UnbindEvent keeps the forward entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := uniqueID()
		link := &model.Link{TicketID: model.TicketID(id), EventID: model.EventID(fmt.Sprintf("e%d", id)), ProfileID: 3}

		gt.NoError(t, repo.Link().Bind(ctx, link)).Required()
		gt.NoError(t, repo.Link().UnbindEvent(ctx, link.EventID)).Required()

		got, err := repo.Link().GetByTicket(ctx, link.TicketID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
	})

	t.Run("Bind rejects an incomplete link", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Link().Bind(context.Background(), &model.Link{TicketID: 1})
		gt.Value(t, err).NotNil()
	})
}

func TestMemoryLinkRepository(t *testing.T) {
	runLinkRepositoryTest(t, newMemoryRepository)
}

func TestRedisLinkRepository(t *testing.T) {
	runLinkRepositoryTest(t, newRedisRepository)
}

func TestFirestoreLinkRepository(t *testing.T) {
	runLinkRepositoryTest(t, newFirestoreRepository)
}
