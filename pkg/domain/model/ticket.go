package model

// Ticket is the subset of a ticketing-backend ticket the sync needs
type Ticket struct {
	ID           TicketID
	Subject      string
	Description  string
	AssigneeID   ProfileID
	CustomFields map[int64]string // custom field ID -> value; null and non-string values are absent
}

// User is a ticketing-backend user. Assignees are users.
type User struct {
	ID       ProfileID
	Name     string
	TimeZone string // friendly label, e.g. "Eastern Time (US & Canada)"
}

// CustomField is one custom field value written back to a ticket
type CustomField struct {
	ID    int64
	Value string
}

// TicketUpdate is a partial ticket submitted in a bulk update
type TicketUpdate struct {
	ID           TicketID
	CustomFields []CustomField
}

// FieldIDs holds the configured custom field IDs carrying the schedule of a ticket
type FieldIDs struct {
	StartDate int64 `toml:"start_date"`
	StartTime int64 `toml:"start_time"`
	EndDate   int64 `toml:"end_date"`
	EndTime   int64 `toml:"end_time"`
}
