package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ticketLinksCollection = "ticket_links"
	eventLinksCollection  = "event_links"
)

type linkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.LinkRepository = &linkRepository{}

func newLinkRepository(client *firestore.Client) *linkRepository {
	return &linkRepository{client: client}
}

type ticketLinkDoc struct {
	TicketID  int64  `firestore:"ticket_id"`
	EventID   string `firestore:"event_id"`
	ProfileID int64  `firestore:"profile_id"`
}

type eventLinkDoc struct {
	TicketID int64 `firestore:"ticket_id"`
}

func (r *linkRepository) tickets() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, ticketLinksCollection))
}

func (r *linkRepository) events() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, eventLinksCollection))
}

func (r *linkRepository) GetByTicket(ctx context.Context, ticketID model.TicketID) (*model.Link, error) {
	doc, err := r.tickets().Doc(ticketID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get ticket link", goerr.V(model.TicketIDKey, ticketID))
	}

	var d ticketLinkDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal ticket link", goerr.V(model.TicketIDKey, ticketID))
	}

	return &model.Link{
		TicketID:  model.TicketID(d.TicketID),
		EventID:   model.EventID(d.EventID),
		ProfileID: model.ProfileID(d.ProfileID),
	}, nil
}

func (r *linkRepository) GetTicketByEvent(ctx context.Context, eventID model.EventID) (model.TicketID, bool, error) {
	doc, err := r.events().Doc(eventID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, false, nil
		}
		return 0, false, goerr.Wrap(err, "failed to get event link", goerr.V(model.EventIDKey, eventID))
	}

	var d eventLinkDoc
	if err := doc.DataTo(&d); err != nil {
		return 0, false, goerr.Wrap(err, "failed to unmarshal event link", goerr.V(model.EventIDKey, eventID))
	}
	return model.TicketID(d.TicketID), true, nil
}

// Bind writes both directions of the link in one transaction
func (r *linkRepository) Bind(ctx context.Context, link *model.Link) error {
	if err := link.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link")
	}

	ticketRef := r.tickets().Doc(link.TicketID.String())
	eventRef := r.events().Doc(link.EventID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(ticketRef, &ticketLinkDoc{
			TicketID:  int64(link.TicketID),
			EventID:   link.EventID.String(),
			ProfileID: int64(link.ProfileID),
		}); err != nil {
			return err
		}
		return tx.Set(eventRef, &eventLinkDoc{TicketID: int64(link.TicketID)})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to bind link",
			goerr.V(model.TicketIDKey, link.TicketID),
			goerr.V(model.EventIDKey, link.EventID))
	}
	return nil
}

func (r *linkRepository) UnbindEvent(ctx context.Context, eventID model.EventID) error {
	if _, err := r.events().Doc(eventID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to unbind event", goerr.V(model.EventIDKey, eventID))
	}
	return nil
}
