package usecase

import (
	"context"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// FetchTicket implements interfaces.TaskHandler
func (uc *UseCases) FetchTicket(ctx context.Context, ticketID model.TicketID, overwrite bool) error {
	return uc.Ticket.FetchTicket(ctx, ticketID, overwrite)
}

// SetupChannel implements interfaces.TaskHandler
func (uc *UseCases) SetupChannel(ctx context.Context, profileID model.ProfileID) error {
	_, err := uc.Channel.Setup(ctx, profileID)
	return err
}

// SaveChannel implements interfaces.TaskHandler
func (uc *UseCases) SaveChannel(ctx context.Context, channel *model.Channel) error {
	return uc.Channel.Save(ctx, channel)
}

// MakeSync implements interfaces.TaskHandler
func (uc *UseCases) MakeSync(ctx context.Context, profileID model.ProfileID) error {
	return uc.Sync.MakeSync(ctx, profileID)
}

// SyncPage implements interfaces.TaskHandler
func (uc *UseCases) SyncPage(ctx context.Context, profileID model.ProfileID, events []*model.CalendarEvent) error {
	_, err := uc.Sync.ApplyBatch(ctx, events)
	return err
}

// RenewChannels implements interfaces.TaskHandler
func (uc *UseCases) RenewChannels(ctx context.Context) error {
	_, err := uc.Channel.RenewDue(ctx, uc.now())
	return err
}
