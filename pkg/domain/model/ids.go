package model

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// ProfileID identifies a calendar-owning user. It is the assignee ID on the ticketing side.
type ProfileID int64

func (x ProfileID) String() string {
	return strconv.FormatInt(int64(x), 10)
}

// Validate checks if the ProfileID is valid
func (x ProfileID) Validate() error {
	if x <= 0 {
		return goerr.New("profile ID must be positive", goerr.V("profile_id", int64(x)))
	}
	return nil
}

// ParseProfileID parses a decimal profile ID
func ParseProfileID(s string) (ProfileID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid profile ID", goerr.V("profile_id", s))
	}
	id := ProfileID(v)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// TicketID identifies a ticket in the ticketing backend
type TicketID int64

func (x TicketID) String() string {
	return strconv.FormatInt(int64(x), 10)
}

// Validate checks if the TicketID is valid
func (x TicketID) Validate() error {
	if x <= 0 {
		return goerr.New("ticket ID must be positive", goerr.V("ticket_id", int64(x)))
	}
	return nil
}

// ParseTicketID parses a decimal ticket ID
func ParseTicketID(s string) (TicketID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid ticket ID", goerr.V("ticket_id", s))
	}
	id := TicketID(v)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// EventID identifies an event in a calendar
type EventID string

func (x EventID) String() string {
	return string(x)
}
