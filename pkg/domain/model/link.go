package model

import "github.com/m-mizutani/goerr/v2"

// Link binds a ticket to the calendar event created for it, on the calendar of ProfileID
type Link struct {
	TicketID  TicketID
	EventID   EventID
	ProfileID ProfileID
}

// Validate checks if the Link is complete
func (x *Link) Validate() error {
	if err := x.TicketID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link")
	}
	if x.EventID == "" {
		return goerr.New("event ID is required", goerr.V(TicketIDKey, x.TicketID))
	}
	if err := x.ProfileID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link", goerr.V(TicketIDKey, x.TicketID))
	}
	return nil
}
