package interfaces

import (
	"context"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// Dispatcher enqueues units of work for asynchronous, retryable execution.
// Every unit is idempotent and may run more than once.
type Dispatcher interface {
	FetchTicket(ctx context.Context, ticketID model.TicketID, overwrite bool) error
	SetupChannel(ctx context.Context, profileID model.ProfileID) error
	SaveChannel(ctx context.Context, channel *model.Channel) error
	MakeSync(ctx context.Context, profileID model.ProfileID) error
	SyncPage(ctx context.Context, profileID model.ProfileID, events []*model.CalendarEvent) error
}

// TaskHandler executes the units of work enqueued through a Dispatcher, plus the
// periodic renewal sweep
type TaskHandler interface {
	FetchTicket(ctx context.Context, ticketID model.TicketID, overwrite bool) error
	SetupChannel(ctx context.Context, profileID model.ProfileID) error
	SaveChannel(ctx context.Context, channel *model.Channel) error
	MakeSync(ctx context.Context, profileID model.ProfileID) error
	SyncPage(ctx context.Context, profileID model.ProfileID, events []*model.CalendarEvent) error
	RenewChannels(ctx context.Context) error
}
