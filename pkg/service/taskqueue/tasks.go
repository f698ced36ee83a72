package taskqueue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// Task types
const (
	TypeFetchTicket   = "ticket:fetch"
	TypeSetupChannel  = "channel:setup"
	TypeSaveChannel   = "channel:save"
	TypeMakeSync      = "sync:make"
	TypeSyncPage      = "sync:page"
	TypeRenewChannels = "channel:renew"
)

const (
	defaultMaxRetry = 10
	taskTimeout     = 5 * time.Minute

	// setupUniqueTTL keeps the periodic sweep from piling up setups of one profile
	setupUniqueTTL = 5 * time.Minute
)

type fetchTicketPayload struct {
	TicketID  int64 `json:"ticket_id"`
	Overwrite bool  `json:"overwrite"`
}

type profilePayload struct {
	ProfileID int64 `json:"profile_id"`
}

type saveChannelPayload struct {
	ProfileID  int64  `json:"profile_id"`
	ChannelID  string `json:"channel_id"`
	ResourceID string `json:"resource_id"`
}

type eventTimePayload struct {
	DateTime string `json:"date_time,omitempty"`
	TimeZone string `json:"time_zone,omitempty"`
}

type eventPayload struct {
	ID     string           `json:"id"`
	Status string           `json:"status,omitempty"`
	Start  eventTimePayload `json:"start"`
	End    eventTimePayload `json:"end"`
}

type syncPagePayload struct {
	ProfileID int64          `json:"profile_id"`
	Events    []eventPayload `json:"events"`
}

func newTask(taskType string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode task payload", goerr.V("type", taskType))
	}
	opts = append([]asynq.Option{asynq.MaxRetry(defaultMaxRetry), asynq.Timeout(taskTimeout)}, opts...)
	return asynq.NewTask(taskType, raw, opts...), nil
}

func decode[T any](task *asynq.Task) (*T, error) {
	var v T
	if err := json.Unmarshal(task.Payload(), &v); err != nil {
		return nil, goerr.Wrap(err, "failed to decode task payload", goerr.V("type", task.Type()))
	}
	return &v, nil
}

// NewFetchTicketTask builds the task upserting the calendar event of a ticket
func NewFetchTicketTask(ticketID model.TicketID, overwrite bool) (*asynq.Task, error) {
	return newTask(TypeFetchTicket, &fetchTicketPayload{TicketID: int64(ticketID), Overwrite: overwrite})
}

// NewSetupChannelTask builds the task registering a new channel for a profile
func NewSetupChannelTask(profileID model.ProfileID) (*asynq.Task, error) {
	return newTask(TypeSetupChannel, &profilePayload{ProfileID: int64(profileID)}, asynq.Unique(setupUniqueTTL))
}

// NewSaveChannelTask builds the task storing a confirmed channel
func NewSaveChannelTask(channel *model.Channel) (*asynq.Task, error) {
	return newTask(TypeSaveChannel, &saveChannelPayload{
		ProfileID:  int64(channel.ProfileID),
		ChannelID:  channel.ID,
		ResourceID: channel.ResourceID,
	})
}

// NewMakeSyncTask builds the task pulling calendar changes of a profile
func NewMakeSyncTask(profileID model.ProfileID) (*asynq.Task, error) {
	return newTask(TypeMakeSync, &profilePayload{ProfileID: int64(profileID)})
}

// NewSyncPageTask builds the task writing one batch of events back to tickets
func NewSyncPageTask(profileID model.ProfileID, events []*model.CalendarEvent) (*asynq.Task, error) {
	p := &syncPagePayload{ProfileID: int64(profileID), Events: make([]eventPayload, 0, len(events))}
	for _, e := range events {
		p.Events = append(p.Events, eventPayload{
			ID:     e.ID.String(),
			Status: e.Status,
			Start:  eventTimePayload{DateTime: e.Start.DateTime, TimeZone: e.Start.TimeZone},
			End:    eventTimePayload{DateTime: e.End.DateTime, TimeZone: e.End.TimeZone},
		})
	}
	return newTask(TypeSyncPage, p)
}

// NewRenewChannelsTask builds the periodic renewal sweep
func NewRenewChannelsTask() *asynq.Task {
	// A missed sweep is covered by the next one
	return asynq.NewTask(TypeRenewChannels, nil, asynq.MaxRetry(0), asynq.Timeout(time.Minute))
}

func (p *syncPagePayload) calendarEvents() []*model.CalendarEvent {
	events := make([]*model.CalendarEvent, 0, len(p.Events))
	for _, e := range p.Events {
		events = append(events, &model.CalendarEvent{
			ID:     model.EventID(e.ID),
			Status: e.Status,
			Start:  model.EventTime{DateTime: e.Start.DateTime, TimeZone: e.Start.TimeZone},
			End:    model.EventTime{DateTime: e.End.DateTime, TimeZone: e.End.TimeZone},
		})
	}
	return events
}
