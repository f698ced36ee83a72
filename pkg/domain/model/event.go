package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	// EventDateTimeLayout is the wall-clock layout written to calendar events.
	// The zone travels separately in EventTime.TimeZone.
	EventDateTimeLayout = "2006-01-02T15:04:05"

	// FieldDateLayout and FieldTimeLayout are the layouts written back to ticket custom fields
	FieldDateLayout = "2006-01-02"
	FieldTimeLayout = "15:04"

	// EventStatusCancelled marks deleted events in incremental listings
	EventStatusCancelled = "cancelled"
)

// CalendarEvent is the calendar-side representation of a scheduled ticket
type CalendarEvent struct {
	ID          EventID
	Status      string
	Summary     string
	Description string
	Start       EventTime
	End         EventTime
	Source      *EventSource
}

// EventTime is a timed event boundary. Date-only (all-day) boundaries have an empty DateTime.
type EventTime struct {
	DateTime string
	TimeZone string
}

// EventSource points from an event back to the ticket it was created from
type EventSource struct {
	Title string
	URL   string
}

// Schedule is the four ticket custom field values describing when a ticket happens
type Schedule struct {
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

var (
	dateLayouts = []string{
		FieldDateLayout,
		time.RFC3339,
		EventDateTimeLayout,
		"2006-01-02T15:04",
		"2006/01/02",
	}
	timeLayouts = []string{
		FieldTimeLayout,
		"15:04:05",
		"3:04PM",
		"3:04 PM",
		"3:04pm",
		"3:04 pm",
		time.RFC3339,
		EventDateTimeLayout,
		"2006-01-02T15:04",
	}
)

func parseWithLayouts(value string, layouts []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fieldValue(ticket *Ticket, name string, id int64) (string, error) {
	v, ok := ticket.CustomFields[id]
	if !ok || strings.TrimSpace(v) == "" {
		return "", goerr.Wrap(ErrMalformedTicket, "missing custom field",
			goerr.V(TicketIDKey, ticket.ID), goerr.V(FieldKey, name), goerr.V("field_id", id))
	}
	return v, nil
}

func combine(ticket *Ticket, dateName string, dateID int64, timeName string, timeID int64) (time.Time, error) {
	dateRaw, err := fieldValue(ticket, dateName, dateID)
	if err != nil {
		return time.Time{}, err
	}
	timeRaw, err := fieldValue(ticket, timeName, timeID)
	if err != nil {
		return time.Time{}, err
	}

	d, ok := parseWithLayouts(dateRaw, dateLayouts)
	if !ok {
		return time.Time{}, goerr.Wrap(ErrMalformedTicket, "unparseable date field",
			goerr.V(TicketIDKey, ticket.ID), goerr.V(FieldKey, dateName), goerr.V("value", dateRaw))
	}
	t, ok := parseWithLayouts(timeRaw, timeLayouts)
	if !ok {
		return time.Time{}, goerr.Wrap(ErrMalformedTicket, "unparseable time field",
			goerr.V(TicketIDKey, ticket.ID), goerr.V(FieldKey, timeName), goerr.V("value", timeRaw))
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

// NewCalendarEvent translates a ticket into the event placed on its assignee's calendar.
// Any missing or unparseable scheduling field fails with ErrMalformedTicket and no event.
func NewCalendarEvent(ticket *Ticket, assignee *User, ids FieldIDs, ticketBaseURL string) (*CalendarEvent, error) {
	if err := ticket.ID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrMalformedTicket, "invalid ticket ID", goerr.V(TicketIDKey, ticket.ID))
	}
	if err := ticket.AssigneeID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrMalformedTicket, "ticket has no assignee", goerr.V(TicketIDKey, ticket.ID))
	}

	start, err := combine(ticket, "start_date", ids.StartDate, "start_time", ids.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := combine(ticket, "end_date", ids.EndDate, "end_time", ids.EndTime)
	if err != nil {
		return nil, err
	}

	var friendly string
	if assignee != nil {
		friendly = assignee.TimeZone
	}
	tz := FriendlyToTZ(friendly)

	return &CalendarEvent{
		Summary:     ticket.Subject,
		Description: ticket.Description,
		Start:       EventTime{DateTime: start.Format(EventDateTimeLayout), TimeZone: tz},
		End:         EventTime{DateTime: end.Format(EventDateTimeLayout), TimeZone: tz},
		Source: &EventSource{
			Title: ticket.ID.String(),
			URL:   TicketURL(ticketBaseURL, ticket.ID),
		},
	}, nil
}

// TicketURL builds the deep link to a ticket in the ticketing UI
func TicketURL(baseURL string, id TicketID) string {
	base, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		return "tickets/" + id.String() + "/"
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(&url.URL{Path: "tickets/" + id.String() + "/"}).String()
}

func parseEventDateTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(EventDateTimeLayout, v)
}

// IsTimed reports whether both boundaries of the event carry a date-time
func (x *CalendarEvent) IsTimed() bool {
	return x.Start.DateTime != "" && x.End.DateTime != ""
}

// ScheduleFromEvent extracts the ticket schedule from an event, keeping the event's own
// wall clock (the offset in the date-time is not converted away).
func ScheduleFromEvent(event *CalendarEvent) (*Schedule, error) {
	if !event.IsTimed() {
		return nil, goerr.New("event has no timed start or end", goerr.V(EventIDKey, event.ID))
	}

	start, err := parseEventDateTime(event.Start.DateTime)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid event start", goerr.V(EventIDKey, event.ID))
	}
	end, err := parseEventDateTime(event.End.DateTime)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid event end", goerr.V(EventIDKey, event.ID))
	}

	return &Schedule{
		StartDate: start.Format(FieldDateLayout),
		StartTime: start.Format(FieldTimeLayout),
		EndDate:   end.Format(FieldDateLayout),
		EndTime:   end.Format(FieldTimeLayout),
	}, nil
}

// CustomFields returns the schedule as ticket custom field values
func (x *Schedule) CustomFields(ids FieldIDs) []CustomField {
	return []CustomField{
		{ID: ids.StartDate, Value: x.StartDate},
		{ID: ids.StartTime, Value: x.StartTime},
		{ID: ids.EndDate, Value: x.EndDate},
		{ID: ids.EndTime, Value: x.EndTime},
	}
}
