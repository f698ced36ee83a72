package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/repository/memory"
	"github.com/secmon-lab/ticketcal/pkg/usecase"
)

var (
	testFieldIDs = model.FieldIDs{StartDate: 1001, StartTime: 1002, EndDate: 1003, EndTime: 1004}
	testNow      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func scheduledTicket(id model.TicketID, assignee model.ProfileID) *model.Ticket {
	return &model.Ticket{
		ID:         id,
		Subject:    "Install router",
		AssigneeID: assignee,
		CustomFields: map[int64]string{
			1001: "2024-03-01",
			1002: "09:00",
			1003: "2024-03-01",
			1004: "10:00",
		},
	}
}

type testEnv struct {
	repo       *memory.Memory
	calendars  *fakeCalendars
	ticketing  *fakeTicketing
	dispatcher *recordingDispatcher
	uc         *usecase.UseCases
}

func newTestEnv(t *testing.T, profiles ...model.ProfileID) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:       memory.New(),
		calendars:  newFakeCalendars(testNow, profiles...),
		ticketing:  newFakeTicketing(),
		dispatcher: &recordingDispatcher{},
	}
	env.uc = usecase.New(env.repo,
		usecase.WithCalendar(env.calendars),
		usecase.WithTicketing(env.ticketing),
		usecase.WithDispatcher(env.dispatcher),
		usecase.WithFieldIDs(testFieldIDs),
		usecase.WithTicketBaseURL("https://example.zendesk.com"),
		usecase.WithBaseURL("https://ticketcal.example.com"),
		usecase.WithAPIToken("shared-token"),
		usecase.WithClock(func() time.Time { return testNow }),
	)
	return env
}

func TestFetchTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts event and binds link", func(t *testing.T) {
		env := newTestEnv(t, 501)
		env.ticketing.tickets[12] = scheduledTicket(12, 501)
		env.ticketing.users[501] = &model.User{ID: 501, TimeZone: "Eastern Time (US & Canada)"}

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, false)).Required()

		link, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()
		gt.Value(t, link).NotNil()
		gt.Value(t, link.ProfileID).Equal(model.ProfileID(501))

		event := env.calendars.Calendar(501).Event(link.EventID)
		gt.Value(t, event).NotNil()
		gt.Value(t, event.Start.DateTime).Equal("2024-03-01T09:00:00")
		gt.Value(t, event.Start.TimeZone).Equal("America/New_York")
		gt.Value(t, event.Source.URL).Equal("https://example.zendesk.com/tickets/12/")

		ticketID, ok, err := env.repo.Link().GetTicketByEvent(ctx, link.EventID)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.Value(t, ticketID).Equal(model.TicketID(12))
	})

	t.Run("repeated fetch without overwrite creates a second event", func(t *testing.T) {
		env := newTestEnv(t, 501)
		env.ticketing.tickets[12] = scheduledTicket(12, 501)

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, false)).Required()
		first, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, false)).Required()
		second, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()

		gt.Number(t, env.calendars.Calendar(501).EventCount()).Equal(2)
		gt.Value(t, second.EventID).NotEqual(first.EventID)
	})

	t.Run("fetch with overwrite patches the same event", func(t *testing.T) {
		env := newTestEnv(t, 501)
		env.ticketing.tickets[12] = scheduledTicket(12, 501)

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, false)).Required()
		first, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()

		updated := scheduledTicket(12, 501)
		updated.CustomFields[1002] = "11:30"
		env.ticketing.tickets[12] = updated

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, true)).Required()
		second, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()

		cal := env.calendars.Calendar(501)
		gt.Number(t, cal.EventCount()).Equal(1)
		gt.Value(t, second.EventID).Equal(first.EventID)
		gt.Value(t, cal.Event(first.EventID).Start.DateTime).Equal("2024-03-01T11:30:00")
	})

	t.Run("overwrite without link inserts", func(t *testing.T) {
		env := newTestEnv(t, 501)
		env.ticketing.tickets[12] = scheduledTicket(12, 501)

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, true)).Required()
		gt.Number(t, env.calendars.Calendar(501).EventCount()).Equal(1)
	})

	t.Run("overwrite of a deleted event inserts a new one", func(t *testing.T) {
		env := newTestEnv(t, 501)
		env.ticketing.tickets[12] = scheduledTicket(12, 501)

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, false)).Required()
		first, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()
		gt.NoError(t, env.calendars.Calendar(501).DeleteEvent(ctx, first.EventID)).Required()

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, true)).Required()
		second, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()
		gt.Value(t, second.EventID).NotEqual(first.EventID)
		gt.Number(t, env.calendars.Calendar(501).EventCount()).Equal(1)
	})

	t.Run("reassignment moves the event to the new assignee", func(t *testing.T) {
		env := newTestEnv(t, 501, 502)
		env.ticketing.tickets[12] = scheduledTicket(12, 501)

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, false)).Required()
		old, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()

		env.ticketing.tickets[12] = scheduledTicket(12, 502)
		gt.NoError(t, env.uc.FetchTicket(ctx, 12, true)).Required()

		gt.Number(t, env.calendars.Calendar(501).EventCount()).Equal(0)
		gt.Number(t, env.calendars.Calendar(502).EventCount()).Equal(1)

		link, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()
		gt.Value(t, link.ProfileID).Equal(model.ProfileID(502))
		gt.Value(t, link.EventID).NotEqual(old.EventID)

		_, ok, err := env.repo.Link().GetTicketByEvent(ctx, old.EventID)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("reassignment tolerates a previous assignee without credentials", func(t *testing.T) {
		env := newTestEnv(t, 502)
		gt.NoError(t, env.repo.Link().Bind(ctx, &model.Link{TicketID: 12, EventID: "orphan", ProfileID: 501})).Required()
		env.ticketing.tickets[12] = scheduledTicket(12, 502)

		gt.NoError(t, env.uc.FetchTicket(ctx, 12, true)).Required()
		gt.Number(t, env.calendars.Calendar(502).EventCount()).Equal(1)

		_, ok, err := env.repo.Link().GetTicketByEvent(ctx, "orphan")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("malformed ticket creates no event", func(t *testing.T) {
		env := newTestEnv(t, 501)
		ticket := scheduledTicket(12, 501)
		delete(ticket.CustomFields, 1004)
		env.ticketing.tickets[12] = ticket

		err := env.uc.FetchTicket(ctx, 12, false)
		gt.Error(t, err).Is(model.ErrMalformedTicket)
		gt.Number(t, env.calendars.Calendar(501).EventCount()).Equal(0)

		link, err := env.repo.Link().GetByTicket(ctx, 12)
		gt.NoError(t, err).Required()
		gt.Value(t, link).Nil()
	})

	t.Run("unassigned ticket is malformed", func(t *testing.T) {
		env := newTestEnv(t, 501)
		env.ticketing.tickets[12] = scheduledTicket(12, 0)

		err := env.uc.FetchTicket(ctx, 12, false)
		gt.Error(t, err).Is(model.ErrMalformedTicket)
	})

	t.Run("assignee without credentials is reported", func(t *testing.T) {
		env := newTestEnv(t)
		env.ticketing.tickets[12] = scheduledTicket(12, 501)

		err := env.uc.FetchTicket(ctx, 12, false)
		gt.Error(t, err).Is(model.ErrCredentialsNotFound)
	})
}

func TestOnTicketCreatedOrUpdated(t *testing.T) {
	env := newTestEnv(t)
	gt.NoError(t, env.uc.OnTicketCreatedOrUpdated(context.Background(), 12, true)).Required()
	gt.Array(t, env.dispatcher.fetches).Length(1)
	gt.Value(t, env.dispatcher.fetches[0]).Equal(model.TicketID(12))

	err := env.uc.OnTicketCreatedOrUpdated(context.Background(), 0, true)
	gt.Value(t, err).NotNil()
}
