package interfaces

import (
	"context"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// LinkRepository keeps the ticket <-> event mapping in two lookup directions
type LinkRepository interface {
	// GetByTicket returns nil without error when the ticket has no event
	GetByTicket(ctx context.Context, ticketID model.TicketID) (*model.Link, error)

	// GetTicketByEvent resolves the reverse direction. ok is false for unknown events.
	GetTicketByEvent(ctx context.Context, eventID model.EventID) (ticketID model.TicketID, ok bool, err error)

	// Bind upserts both directions; readers observe both or neither
	Bind(ctx context.Context, link *model.Link) error

	// UnbindEvent removes only the reverse entry of the event
	UnbindEvent(ctx context.Context, eventID model.EventID) error
}
