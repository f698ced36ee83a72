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

// SyncBatchSize is the number of events handed to one SyncPage task
const SyncBatchSize = 100

// SyncUseCase pulls calendar changes and writes schedules back to tickets
type SyncUseCase struct {
	repo       interfaces.Repository
	calendars  calendar.Factory
	ticketing  ticketing.Service
	dispatcher interfaces.Dispatcher
	fieldIDs   model.FieldIDs
}

func NewSyncUseCase(repo interfaces.Repository, calendars calendar.Factory, ts ticketing.Service, dispatcher interfaces.Dispatcher, fieldIDs model.FieldIDs) *SyncUseCase {
	return &SyncUseCase{
		repo:       repo,
		calendars:  calendars,
		ticketing:  ts,
		dispatcher: dispatcher,
		fieldIDs:   fieldIDs,
	}
}

// MakeSync lists everything changed on a profile's calendar since the last sync and
// dispatches it in batches. Without a stored sync token, or when the stored token is
// rejected, the whole calendar is listed.
func (uc *SyncUseCase) MakeSync(ctx context.Context, profileID model.ProfileID) error {
	if uc.calendars == nil || uc.dispatcher == nil {
		return goerr.Wrap(ErrNotConfigured, "calendar and dispatcher are required to sync")
	}

	cal, err := uc.calendars.ForProfile(ctx, profileID)
	if err != nil {
		return goerr.Wrap(err, "failed to open calendar", goerr.V(model.ProfileIDKey, profileID))
	}

	syncToken, err := uc.repo.SyncCursor().GetSyncToken(ctx, profileID)
	if err != nil {
		return goerr.Wrap(err, "failed to get sync token", goerr.V(model.ProfileIDKey, profileID))
	}

	logger := logging.From(ctx).With("profile_id", profileID)
	var pageToken string
	var listed, batches int

	for {
		page, err := cal.ListEvents(ctx, pageToken, syncToken)
		if err != nil {
			if !errors.Is(err, model.ErrSyncTokenInvalidated) || syncToken == "" {
				return goerr.Wrap(err, "failed to list events",
					goerr.V(model.ProfileIDKey, profileID), goerr.V("full_sync", syncToken == ""))
			}

			logger.Info("sync token invalidated, starting full sync")
			if err := uc.repo.SyncCursor().DeleteSyncToken(ctx, profileID); err != nil {
				return goerr.Wrap(err, "failed to delete sync token", goerr.V(model.ProfileIDKey, profileID))
			}
			metrics.FullSyncStarted()
			syncToken, pageToken = "", ""
			continue
		}

		for start := 0; start < len(page.Items); start += SyncBatchSize {
			end := min(start+SyncBatchSize, len(page.Items))
			if err := uc.dispatcher.SyncPage(ctx, profileID, page.Items[start:end]); err != nil {
				return goerr.Wrap(err, "failed to dispatch sync batch",
					goerr.V(model.ProfileIDKey, profileID), goerr.V(BatchSizeKey, end-start))
			}
			batches++
		}
		listed += len(page.Items)

		if page.NextPageToken == "" {
			if page.NextSyncToken != "" {
				if err := uc.repo.SyncCursor().PutSyncToken(ctx, profileID, page.NextSyncToken); err != nil {
					return goerr.Wrap(err, "failed to store sync token", goerr.V(model.ProfileIDKey, profileID))
				}
			}
			break
		}
		pageToken = page.NextPageToken
	}

	logger.Info("calendar synced", "events", listed, "batches", batches)
	return nil
}

// ApplyBatch writes the schedule of every linked, timed event back to its ticket with a
// single bulk update. Events of unknown tickets, cancelled events and all-day events are
// skipped. When a ticket appears more than once the last event wins.
func (uc *SyncUseCase) ApplyBatch(ctx context.Context, events []*model.CalendarEvent) ([]*model.TicketUpdate, error) {
	var updates []*model.TicketUpdate
	index := make(map[model.TicketID]int)

	for _, event := range events {
		if event.Status == model.EventStatusCancelled || !event.IsTimed() {
			continue
		}

		ticketID, ok, err := uc.repo.Link().GetTicketByEvent(ctx, event.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve event", goerr.V(model.EventIDKey, event.ID))
		}
		if !ok {
			continue
		}

		schedule, err := model.ScheduleFromEvent(event)
		if err != nil {
			logging.From(ctx).Warn("skipping event with unreadable schedule",
				"event_id", event.ID, "ticket_id", ticketID, "error", err)
			continue
		}

		update := &model.TicketUpdate{ID: ticketID, CustomFields: schedule.CustomFields(uc.fieldIDs)}
		if i, seen := index[ticketID]; seen {
			updates[i] = update
			continue
		}
		index[ticketID] = len(updates)
		updates = append(updates, update)
	}

	if len(updates) == 0 {
		return nil, nil
	}
	if uc.ticketing == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "ticketing is required to apply calendar changes")
	}

	if err := uc.ticketing.UpdateTicketsBulk(ctx, updates); err != nil {
		return nil, goerr.Wrap(err, "failed to update tickets", goerr.V(BatchSizeKey, len(updates)))
	}
	metrics.TicketsUpdated(len(updates))

	logging.From(ctx).Info("tickets updated from calendar", "tickets", len(updates), "events", len(events))
	return updates, nil
}
