package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/service/calendar"
)

// fakeCalendars is an in-memory calendar backend for several profiles
type fakeCalendars struct {
	mu         sync.Mutex
	calendars  map[model.ProfileID]*fakeCalendar
	authorized map[model.ProfileID]bool
	now        time.Time
}

func newFakeCalendars(now time.Time, profiles ...model.ProfileID) *fakeCalendars {
	f := &fakeCalendars{
		calendars:  make(map[model.ProfileID]*fakeCalendar),
		authorized: make(map[model.ProfileID]bool),
		now:        now,
	}
	for _, p := range profiles {
		f.authorized[p] = true
	}
	return f
}

func (f *fakeCalendars) ForProfile(ctx context.Context, profileID model.ProfileID) (calendar.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.authorized[profileID] {
		return nil, goerr.Wrap(model.ErrCredentialsNotFound, "not authorized", goerr.V(model.ProfileIDKey, profileID))
	}
	return f.get(profileID), nil
}

func (f *fakeCalendars) get(profileID model.ProfileID) *fakeCalendar {
	c, ok := f.calendars[profileID]
	if !ok {
		c = &fakeCalendar{
			profileID: profileID,
			events:    make(map[model.EventID]*model.CalendarEvent),
			channels:  make(map[string]model.Channel),
			now:       f.now,
		}
		f.calendars[profileID] = c
	}
	return c
}

// Calendar returns the fake calendar of a profile, creating it if needed
func (f *fakeCalendars) Calendar(profileID model.ProfileID) *fakeCalendar {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(profileID)
}

type fakeCalendar struct {
	mu        sync.Mutex
	profileID model.ProfileID
	now       time.Time
	seq       int

	events   map[model.EventID]*model.CalendarEvent
	channels map[string]model.Channel
	watches  []*calendar.WatchRequest
	patched  []model.EventID
	deleted  []model.EventID

	// listFn replaces the default single-page listing when set
	listFn   func(pageToken, syncToken string) (*calendar.EventPage, error)
	listArgs [][2]string
}

func (c *fakeCalendar) InsertEvent(ctx context.Context, event *model.CalendarEvent) (*model.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	created := *event
	created.ID = model.EventID(fmt.Sprintf("p%d-evt%d", c.profileID, c.seq))
	c.events[created.ID] = &created
	return &created, nil
}

func (c *fakeCalendar) PatchEvent(ctx context.Context, eventID model.EventID, event *model.CalendarEvent) (*model.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.events[eventID]; !ok {
		return nil, goerr.Wrap(model.ErrEventNotFound, "no such event", goerr.V(model.EventIDKey, eventID))
	}
	patched := *event
	patched.ID = eventID
	c.events[eventID] = &patched
	c.patched = append(c.patched, eventID)
	return &patched, nil
}

func (c *fakeCalendar) DeleteEvent(ctx context.Context, eventID model.EventID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.events[eventID]; !ok {
		return goerr.Wrap(model.ErrEventNotFound, "no such event", goerr.V(model.EventIDKey, eventID))
	}
	delete(c.events, eventID)
	c.deleted = append(c.deleted, eventID)
	return nil
}

func (c *fakeCalendar) ListEvents(ctx context.Context, pageToken, syncToken string) (*calendar.EventPage, error) {
	c.mu.Lock()
	c.listArgs = append(c.listArgs, [2]string{pageToken, syncToken})
	fn := c.listFn
	c.mu.Unlock()

	if fn != nil {
		return fn(pageToken, syncToken)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	page := &calendar.EventPage{NextSyncToken: "sync-after"}
	for _, e := range c.events {
		page.Items = append(page.Items, e)
	}
	return page, nil
}

func (c *fakeCalendar) Watch(ctx context.Context, req *calendar.WatchRequest) (*model.ChannelRegistration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := model.Channel{ID: req.ChannelID, ResourceID: "res-" + req.ChannelID, ProfileID: c.profileID}
	c.channels[ch.ID] = ch
	c.watches = append(c.watches, req)
	return &model.ChannelRegistration{Channel: ch, Expiration: c.now.Add(req.TTL)}, nil
}

func (c *fakeCalendar) StopChannel(ctx context.Context, channel *model.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.channels[channel.ID]; !ok {
		return goerr.Wrap(model.ErrChannelNotFound, "no such channel", goerr.V(model.ChannelIDKey, channel.ID))
	}
	delete(c.channels, channel.ID)
	return nil
}

func (c *fakeCalendar) EventCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *fakeCalendar) Event(id model.EventID) *model.CalendarEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[id]
}

func (c *fakeCalendar) ActiveChannels() []model.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []model.Channel
	for _, ch := range c.channels {
		out = append(out, ch)
	}
	return out
}

// fakeTicketing is an in-memory ticketing backend
type fakeTicketing struct {
	mu      sync.Mutex
	tickets map[model.TicketID]*model.Ticket
	users   map[model.ProfileID]*model.User
	updates [][]*model.TicketUpdate
	err     error
}

func newFakeTicketing() *fakeTicketing {
	return &fakeTicketing{
		tickets: make(map[model.TicketID]*model.Ticket),
		users:   make(map[model.ProfileID]*model.User),
	}
}

func (f *fakeTicketing) ShowTicket(ctx context.Context, id model.TicketID) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tickets[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrMalformedTicket, "ticket not found", goerr.V(model.TicketIDKey, id))
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTicketing) ShowUser(ctx context.Context, id model.ProfileID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return &model.User{ID: id}, nil
	}
	return u, nil
}

func (f *fakeTicketing) UpdateTicketsBulk(ctx context.Context, updates []*model.TicketUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, updates)
	return nil
}

func (f *fakeTicketing) Updates() [][]*model.TicketUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

// recordingDispatcher records dispatched work without running it
type recordingDispatcher struct {
	mu           sync.Mutex
	fetches      []model.TicketID
	setups       []model.ProfileID
	saves        []*model.Channel
	syncs        []model.ProfileID
	pages        [][]*model.CalendarEvent
	failSetupFor map[model.ProfileID]bool
}

func (d *recordingDispatcher) FetchTicket(ctx context.Context, ticketID model.TicketID, overwrite bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetches = append(d.fetches, ticketID)
	return nil
}

func (d *recordingDispatcher) SetupChannel(ctx context.Context, profileID model.ProfileID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failSetupFor[profileID] {
		return goerr.New("queue unavailable", goerr.V(model.ProfileIDKey, profileID))
	}
	d.setups = append(d.setups, profileID)
	return nil
}

func (d *recordingDispatcher) SaveChannel(ctx context.Context, channel *model.Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saves = append(d.saves, channel)
	return nil
}

func (d *recordingDispatcher) MakeSync(ctx context.Context, profileID model.ProfileID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syncs = append(d.syncs, profileID)
	return nil
}

func (d *recordingDispatcher) SyncPage(ctx context.Context, profileID model.ProfileID, events []*model.CalendarEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages = append(d.pages, events)
	return nil
}
