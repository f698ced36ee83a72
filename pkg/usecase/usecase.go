package usecase

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/service/calendar"
	"github.com/secmon-lab/ticketcal/pkg/service/ticketing"
)

// UseCases holds the application logic. It is the TaskHandler executing dispatched work and
// provides the entry points called from HTTP handlers.
type UseCases struct {
	repo       interfaces.Repository
	calendars  calendar.Factory
	ticketing  ticketing.Service
	dispatcher interfaces.Dispatcher

	fieldIDs      model.FieldIDs
	ticketBaseURL string
	baseURL       string
	apiToken      string
	oauth         *oauth2.Config
	renewLead     time.Duration
	now           func() time.Time
	newChannelID  func() string

	Ticket  *TicketUseCase
	Channel *ChannelUseCase
	Sync    *SyncUseCase
	Auth    *AuthUseCase
}

var _ interfaces.TaskHandler = &UseCases{}

type Option func(*UseCases)

// WithCalendar sets the factory building per-profile calendar clients
func WithCalendar(f calendar.Factory) Option {
	return func(uc *UseCases) {
		uc.calendars = f
	}
}

// WithTicketing sets the ticketing backend client
func WithTicketing(svc ticketing.Service) Option {
	return func(uc *UseCases) {
		uc.ticketing = svc
	}
}

// WithDispatcher sets where follow-up work is enqueued
func WithDispatcher(d interfaces.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatcher = d
	}
}

// WithFieldIDs sets the custom field IDs holding the ticket schedule
func WithFieldIDs(ids model.FieldIDs) Option {
	return func(uc *UseCases) {
		uc.fieldIDs = ids
	}
}

// WithTicketBaseURL sets the ticketing UI URL used for event source links
func WithTicketBaseURL(u string) Option {
	return func(uc *UseCases) {
		uc.ticketBaseURL = u
	}
}

// WithBaseURL sets the public URL of this service, used for webhook addresses
func WithBaseURL(u string) Option {
	return func(uc *UseCases) {
		uc.baseURL = u
	}
}

// WithAPIToken sets the shared token verifying inbound calls
func WithAPIToken(token string) Option {
	return func(uc *UseCases) {
		uc.apiToken = token
	}
}

// WithOAuthConfig sets the Google OAuth client used for login
func WithOAuthConfig(cfg *oauth2.Config) Option {
	return func(uc *UseCases) {
		uc.oauth = cfg
	}
}

// WithRenewLead renews channels this long before they expire
func WithRenewLead(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.renewLead = d
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// WithChannelIDGenerator replaces the channel ID generator
func WithChannelIDGenerator(gen func() string) Option {
	return func(uc *UseCases) {
		uc.newChannelID = gen
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
		newChannelID: func() string {
			return uuid.NewString()
		},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Ticket = NewTicketUseCase(repo, uc.calendars, uc.ticketing, uc.fieldIDs, uc.ticketBaseURL)
	uc.Channel = &ChannelUseCase{
		repo:         repo,
		calendars:    uc.calendars,
		dispatcher:   uc.dispatcher,
		baseURL:      uc.baseURL,
		apiToken:     uc.apiToken,
		renewLead:    uc.renewLead,
		now:          uc.now,
		newChannelID: uc.newChannelID,
	}
	uc.Sync = NewSyncUseCase(repo, uc.calendars, uc.ticketing, uc.dispatcher, uc.fieldIDs)
	uc.Auth = &AuthUseCase{
		repo:       repo,
		oauth:      uc.oauth,
		dispatcher: uc.dispatcher,
		channel:    uc.Channel,
		stateKey:   stateKey(uc.apiToken),
		now:        uc.now,
	}

	return uc
}
