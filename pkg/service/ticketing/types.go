package ticketing

import (
	"context"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// Service is the ticketing backend
type Service interface {
	// ShowTicket fetches a ticket with its custom fields
	ShowTicket(ctx context.Context, id model.TicketID) (*model.Ticket, error)

	// ShowUser fetches a user, used to resolve the assignee's time zone
	ShowUser(ctx context.Context, id model.ProfileID) (*model.User, error)

	// UpdateTicketsBulk writes custom field values to several tickets in one call
	UpdateTicketsBulk(ctx context.Context, updates []*model.TicketUpdate) error
}

type customFieldJSON struct {
	ID    int64 `json:"id"`
	Value any   `json:"value"`
}

type ticketJSON struct {
	ID           int64             `json:"id"`
	Subject      string            `json:"subject"`
	Description  string            `json:"description"`
	AssigneeID   *int64            `json:"assignee_id"`
	CustomFields []customFieldJSON `json:"custom_fields"`
}

type ticketResponse struct {
	Ticket ticketJSON `json:"ticket"`
}

type userJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TimeZone string `json:"time_zone"`
}

type userResponse struct {
	User userJSON `json:"user"`
}

type ticketUpdateJSON struct {
	ID           int64             `json:"id"`
	CustomFields []customFieldJSON `json:"custom_fields"`
}

type updateManyRequest struct {
	Tickets []ticketUpdateJSON `json:"tickets"`
}
