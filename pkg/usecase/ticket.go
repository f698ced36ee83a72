package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/service/calendar"
	"github.com/secmon-lab/ticketcal/pkg/service/ticketing"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
	"github.com/secmon-lab/ticketcal/pkg/utils/metrics"
)

// TicketUseCase places tickets on their assignee's calendar
type TicketUseCase struct {
	repo          interfaces.Repository
	calendars     calendar.Factory
	ticketing     ticketing.Service
	fieldIDs      model.FieldIDs
	ticketBaseURL string
}

func NewTicketUseCase(repo interfaces.Repository, calendars calendar.Factory, ts ticketing.Service, fieldIDs model.FieldIDs, ticketBaseURL string) *TicketUseCase {
	return &TicketUseCase{
		repo:          repo,
		calendars:     calendars,
		ticketing:     ts,
		fieldIDs:      fieldIDs,
		ticketBaseURL: ticketBaseURL,
	}
}

// FetchTicket loads a ticket and upserts its calendar event.
//
// Without overwrite a new event is always inserted and bound. With overwrite an existing link
// is followed: the linked event is patched when the assignee is unchanged, and moved (deleted
// on the old calendar, inserted on the new one) when the ticket was reassigned.
func (uc *TicketUseCase) FetchTicket(ctx context.Context, ticketID model.TicketID, overwrite bool) error {
	if uc.calendars == nil || uc.ticketing == nil {
		return goerr.Wrap(ErrNotConfigured, "calendar and ticketing are required to fetch tickets")
	}

	ticket, err := uc.ticketing.ShowTicket(ctx, ticketID)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch ticket", goerr.V(model.TicketIDKey, ticketID))
	}
	if err := ticket.AssigneeID.Validate(); err != nil {
		return goerr.Wrap(model.ErrMalformedTicket, "ticket has no assignee", goerr.V(model.TicketIDKey, ticketID))
	}

	assignee, err := uc.ticketing.ShowUser(ctx, ticket.AssigneeID)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch assignee",
			goerr.V(model.TicketIDKey, ticketID), goerr.V(model.ProfileIDKey, ticket.AssigneeID))
	}

	event, err := model.NewCalendarEvent(ticket, assignee, uc.fieldIDs, uc.ticketBaseURL)
	if err != nil {
		return err
	}

	link, err := uc.repo.Link().GetByTicket(ctx, ticketID)
	if err != nil {
		return goerr.Wrap(err, "failed to get ticket link", goerr.V(model.TicketIDKey, ticketID))
	}

	switch {
	case link == nil || !overwrite:
		return uc.insert(ctx, ticketID, ticket.AssigneeID, event)

	case link.ProfileID == ticket.AssigneeID:
		return uc.patch(ctx, link, event)

	default:
		return uc.move(ctx, link, ticket.AssigneeID, event)
	}
}

func (uc *TicketUseCase) insert(ctx context.Context, ticketID model.TicketID, profileID model.ProfileID, event *model.CalendarEvent) error {
	cal, err := uc.calendars.ForProfile(ctx, profileID)
	if err != nil {
		return goerr.Wrap(err, "failed to open assignee calendar",
			goerr.V(model.TicketIDKey, ticketID), goerr.V(model.ProfileIDKey, profileID))
	}

	created, err := cal.InsertEvent(ctx, event)
	if err != nil {
		return goerr.Wrap(err, "failed to insert event", goerr.V(model.TicketIDKey, ticketID))
	}
	metrics.EventWritten("insert")

	link := &model.Link{TicketID: ticketID, EventID: created.ID, ProfileID: profileID}
	if err := uc.repo.Link().Bind(ctx, link); err != nil {
		return goerr.Wrap(err, "failed to bind event",
			goerr.V(model.TicketIDKey, ticketID), goerr.V(model.EventIDKey, created.ID))
	}

	logging.From(ctx).Info("calendar event created",
		"ticket_id", ticketID, "event_id", created.ID, "profile_id", profileID)
	return nil
}

func (uc *TicketUseCase) patch(ctx context.Context, link *model.Link, event *model.CalendarEvent) error {
	cal, err := uc.calendars.ForProfile(ctx, link.ProfileID)
	if err != nil {
		return goerr.Wrap(err, "failed to open assignee calendar",
			goerr.V(model.TicketIDKey, link.TicketID), goerr.V(model.ProfileIDKey, link.ProfileID))
	}

	if _, err := cal.PatchEvent(ctx, link.EventID, event); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			// Deleted on the calendar side; place it again
			logging.From(ctx).Warn("linked event is gone, inserting a new one",
				"ticket_id", link.TicketID, "event_id", link.EventID)
			if err := uc.repo.Link().UnbindEvent(ctx, link.EventID); err != nil {
				return goerr.Wrap(err, "failed to unbind missing event", goerr.V(model.EventIDKey, link.EventID))
			}
			return uc.insert(ctx, link.TicketID, link.ProfileID, event)
		}
		return goerr.Wrap(err, "failed to patch event",
			goerr.V(model.TicketIDKey, link.TicketID), goerr.V(model.EventIDKey, link.EventID))
	}
	metrics.EventWritten("patch")

	// Rebinding with identical values keeps a half-written link consistent
	if err := uc.repo.Link().Bind(ctx, link); err != nil {
		return goerr.Wrap(err, "failed to bind event", goerr.V(model.TicketIDKey, link.TicketID))
	}

	logging.From(ctx).Info("calendar event updated",
		"ticket_id", link.TicketID, "event_id", link.EventID, "profile_id", link.ProfileID)
	return nil
}

func (uc *TicketUseCase) move(ctx context.Context, link *model.Link, newProfile model.ProfileID, event *model.CalendarEvent) error {
	logger := logging.From(ctx).With("ticket_id", link.TicketID, "event_id", link.EventID,
		"old_profile_id", link.ProfileID, "new_profile_id", newProfile)

	oldCal, err := uc.calendars.ForProfile(ctx, link.ProfileID)
	switch {
	case errors.Is(err, model.ErrCredentialsNotFound):
		logger.Warn("previous assignee has no credentials, leaving old event in place")

	case err != nil:
		return goerr.Wrap(err, "failed to open previous assignee calendar",
			goerr.V(model.TicketIDKey, link.TicketID), goerr.V(model.ProfileIDKey, link.ProfileID))

	default:
		if err := oldCal.DeleteEvent(ctx, link.EventID); err != nil {
			if !errors.Is(err, model.ErrEventNotFound) {
				return goerr.Wrap(err, "failed to delete previous event",
					goerr.V(model.TicketIDKey, link.TicketID), goerr.V(model.EventIDKey, link.EventID))
			}
			logger.Info("previous event already deleted")
		} else {
			metrics.EventWritten("delete")
		}
	}

	if err := uc.repo.Link().UnbindEvent(ctx, link.EventID); err != nil {
		return goerr.Wrap(err, "failed to unbind previous event", goerr.V(model.EventIDKey, link.EventID))
	}

	logger.Info("ticket reassigned, moving event")
	return uc.insert(ctx, link.TicketID, newProfile, event)
}
