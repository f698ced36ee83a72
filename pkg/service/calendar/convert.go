package calendar

import (
	"google.golang.org/api/calendar/v3"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

func toAPIEvent(e *model.CalendarEvent) *calendar.Event {
	ev := &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start:       &calendar.EventDateTime{DateTime: e.Start.DateTime, TimeZone: e.Start.TimeZone},
		End:         &calendar.EventDateTime{DateTime: e.End.DateTime, TimeZone: e.End.TimeZone},
		// Empty summary and description must still clear the fields on patch
		ForceSendFields: []string{"Summary", "Description"},
	}
	if e.Source != nil {
		ev.Source = &calendar.EventSource{Title: e.Source.Title, Url: e.Source.URL}
	}
	return ev
}

func fromAPIEvent(ev *calendar.Event) *model.CalendarEvent {
	e := &model.CalendarEvent{
		ID:          model.EventID(ev.Id),
		Status:      ev.Status,
		Summary:     ev.Summary,
		Description: ev.Description,
	}
	if ev.Start != nil {
		e.Start = model.EventTime{DateTime: ev.Start.DateTime, TimeZone: ev.Start.TimeZone}
	}
	if ev.End != nil {
		e.End = model.EventTime{DateTime: ev.End.DateTime, TimeZone: ev.End.TimeZone}
	}
	if ev.Source != nil {
		e.Source = &model.EventSource{Title: ev.Source.Title, URL: ev.Source.Url}
	}
	return e
}
