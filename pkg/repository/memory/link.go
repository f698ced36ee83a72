package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

type linkRepository struct {
	mu      sync.RWMutex
	tickets map[model.TicketID]model.Link
	events  map[model.EventID]model.TicketID
}

func newLinkRepository() *linkRepository {
	return &linkRepository{
		tickets: make(map[model.TicketID]model.Link),
		events:  make(map[model.EventID]model.TicketID),
	}
}

func (r *linkRepository) GetByTicket(ctx context.Context, ticketID model.TicketID) (*model.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.tickets[ticketID]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

func (r *linkRepository) GetTicketByEvent(ctx context.Context, eventID model.EventID) (model.TicketID, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticketID, ok := r.events[eventID]
	return ticketID, ok, nil
}

func (r *linkRepository) Bind(ctx context.Context, link *model.Link) error {
	if err := link.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickets[link.TicketID] = *link
	r.events[link.EventID] = link.TicketID
	return nil
}

func (r *linkRepository) UnbindEvent(ctx context.Context, eventID model.EventID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, eventID)
	return nil
}
