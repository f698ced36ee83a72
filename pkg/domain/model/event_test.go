package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

var testFieldIDs = model.FieldIDs{
	StartDate: 1001,
	StartTime: 1002,
	EndDate:   1003,
	EndTime:   1004,
}

func newScheduledTicket() *model.Ticket {
	return &model.Ticket{
		ID:          42,
		Subject:     "Install router",
		Description: "Bring the blue cable",
		AssigneeID:  7,
		CustomFields: map[int64]string{
			1001: "2024-03-01",
			1002: "09:00",
			1003: "2024-03-01",
			1004: "10:00",
		},
	}
}

func TestNewCalendarEvent(t *testing.T) {
	t.Run("translates ticket fields", func(t *testing.T) {
		assignee := &model.User{ID: 7, TimeZone: "Eastern Time (US & Canada)"}

		event, err := model.NewCalendarEvent(newScheduledTicket(), assignee, testFieldIDs, "https://example.zendesk.com")
		gt.NoError(t, err).Required()

		gt.Value(t, event.Summary).Equal("Install router")
		gt.Value(t, event.Description).Equal("Bring the blue cable")
		gt.Value(t, event.Start).Equal(model.EventTime{DateTime: "2024-03-01T09:00:00", TimeZone: "America/New_York"})
		gt.Value(t, event.End).Equal(model.EventTime{DateTime: "2024-03-01T10:00:00", TimeZone: "America/New_York"})
		gt.Value(t, event.Source).NotNil()
		gt.Value(t, event.Source.Title).Equal("42")
		gt.Value(t, event.Source.URL).Equal("https://example.zendesk.com/tickets/42/")
	})

	t.Run("unknown time zone falls back to UTC", func(t *testing.T) {
		assignee := &model.User{ID: 7, TimeZone: "Atlantis"}

		event, err := model.NewCalendarEvent(newScheduledTicket(), assignee, testFieldIDs, "https://example.zendesk.com")
		gt.NoError(t, err).Required()
		gt.Value(t, event.Start.TimeZone).Equal(model.DefaultTimeZone)
	})

	t.Run("accepts twelve hour times", func(t *testing.T) {
		ticket := newScheduledTicket()
		ticket.CustomFields[1002] = "9:30 AM"
		ticket.CustomFields[1004] = "1:15PM"

		event, err := model.NewCalendarEvent(ticket, nil, testFieldIDs, "")
		gt.NoError(t, err).Required()
		gt.Value(t, event.Start.DateTime).Equal("2024-03-01T09:30:00")
		gt.Value(t, event.End.DateTime).Equal("2024-03-01T13:15:00")
	})

	for name, mutate := range map[string]func(*model.Ticket){
		"missing start date":   func(x *model.Ticket) { delete(x.CustomFields, 1001) },
		"empty end time":       func(x *model.Ticket) { x.CustomFields[1004] = " " },
		"unparseable end date": func(x *model.Ticket) { x.CustomFields[1003] = "next tuesday" },
		"unparseable time":     func(x *model.Ticket) { x.CustomFields[1002] = "25:99" },
		"no assignee":          func(x *model.Ticket) { x.AssigneeID = 0 },
	} {
		t.Run(name+" is malformed", func(t *testing.T) {
			ticket := newScheduledTicket()
			mutate(ticket)

			event, err := model.NewCalendarEvent(ticket, nil, testFieldIDs, "")
			gt.Value(t, event).Nil()
			gt.Error(t, err).Is(model.ErrMalformedTicket)
		})
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	ticket := newScheduledTicket()
	assignee := &model.User{ID: 7, TimeZone: "Eastern Time (US & Canada)"}

	event, err := model.NewCalendarEvent(ticket, assignee, testFieldIDs, "https://example.zendesk.com")
	gt.NoError(t, err).Required()

	t.Run("from event as written", func(t *testing.T) {
		schedule, err := model.ScheduleFromEvent(event)
		gt.NoError(t, err).Required()

		for _, f := range schedule.CustomFields(testFieldIDs) {
			gt.Value(t, f.Value).Equal(ticket.CustomFields[f.ID])
		}
	})

	t.Run("from event as returned with offset", func(t *testing.T) {
		returned := *event
		returned.Start.DateTime = "2024-03-01T09:00:00-05:00"
		returned.End.DateTime = "2024-03-01T10:00:00-05:00"

		schedule, err := model.ScheduleFromEvent(&returned)
		gt.NoError(t, err).Required()
		gt.Value(t, *schedule).Equal(model.Schedule{
			StartDate: "2024-03-01",
			StartTime: "09:00",
			EndDate:   "2024-03-01",
			EndTime:   "10:00",
		})
	})
}

func TestScheduleFromEvent_AllDay(t *testing.T) {
	_, err := model.ScheduleFromEvent(&model.CalendarEvent{ID: "ev1"})
	gt.Value(t, err).NotNil()
}

func TestTicketURL(t *testing.T) {
	gt.Value(t, model.TicketURL("https://example.zendesk.com/", 5)).Equal("https://example.zendesk.com/tickets/5/")
	gt.Value(t, model.TicketURL("https://example.zendesk.com/agent", 5)).Equal("https://example.zendesk.com/agent/tickets/5/")
}

func TestFriendlyToTZ(t *testing.T) {
	gt.Value(t, model.FriendlyToTZ("Tokyo")).Equal("Asia/Tokyo")
	gt.Value(t, model.FriendlyToTZ("")).Equal("Etc/UTC")
}
