package calendar

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/backoff"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// Scopes requested at login
var Scopes = []string{calendar.CalendarScope}

// NewOAuthConfig builds the OAuth client configuration for Google login
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// GoogleFactory builds per-profile Google Calendar clients from stored credentials
type GoogleFactory struct {
	oauth      *oauth2.Config
	creds      interfaces.CredentialRepository
	policy     backoff.Policy
	clientOpts []option.ClientOption
}

var _ Factory = &GoogleFactory{}

// FactoryOption configures GoogleFactory
type FactoryOption func(*GoogleFactory)

// WithBackoff sets the in-call retry policy
func WithBackoff(p backoff.Policy) FactoryOption {
	return func(f *GoogleFactory) {
		f.policy = p
	}
}

// WithClientOptions appends options passed to the Google API client (e.g. a custom endpoint)
func WithClientOptions(opts ...option.ClientOption) FactoryOption {
	return func(f *GoogleFactory) {
		f.clientOpts = append(f.clientOpts, opts...)
	}
}

func NewFactory(cfg *oauth2.Config, creds interfaces.CredentialRepository, opts ...FactoryOption) *GoogleFactory {
	f := &GoogleFactory{
		oauth:  cfg,
		creds:  creds,
		policy: backoff.Default,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *GoogleFactory) ForProfile(ctx context.Context, profileID model.ProfileID) (Service, error) {
	cred, err := f.creds.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	ts := newPersistingTokenSource(ctx, f.oauth, profileID, cred, f.creds)
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, f.clientOpts...)

	api, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create calendar client", goerr.V(model.ProfileIDKey, profileID))
	}

	return newClient(api, profileID, f.policy), nil
}

// persistingTokenSource refreshes through the OAuth config and writes every newly issued
// token back to the credential store. A rejected refresh (revoked grant) is reported as
// ErrCredentialsNotFound, an unavailable token endpoint as ErrBackendUnavailable.
type persistingTokenSource struct {
	ctx       context.Context
	base      oauth2.TokenSource
	profileID model.ProfileID
	creds     interfaces.CredentialRepository

	mu   sync.Mutex
	last string
}

func newPersistingTokenSource(ctx context.Context, cfg *oauth2.Config, profileID model.ProfileID, cred *model.Credential, creds interfaces.CredentialRepository) *persistingTokenSource {
	return &persistingTokenSource{
		ctx:       ctx,
		base:      cfg.TokenSource(ctx, cred.Token()),
		profileID: profileID,
		creds:     creds,
		last:      cred.AccessToken,
	}
}

func (x *persistingTokenSource) Token() (*oauth2.Token, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	token, err := x.base.Token()
	if err != nil {
		return nil, refreshError(err, x.profileID)
	}

	if token.AccessToken != x.last {
		if err := x.creds.Put(x.ctx, x.profileID, model.NewCredential(token)); err != nil {
			// The refreshed token is still usable for this call
			logging.From(x.ctx).Warn("failed to persist refreshed token",
				"profile_id", x.profileID, "error", err)
		} else {
			x.last = token.AccessToken
		}
	}

	return token, nil
}

// refreshError classifies a failed token refresh. Only a rejected grant means the profile has
// to log in again; throttling and server errors of the token endpoint are retryable.
func refreshError(err error, profileID model.ProfileID) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return goerr.Wrap(err, "failed to refresh token", goerr.V(model.ProfileIDKey, profileID))
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}
	values := []goerr.Option{
		goerr.V(model.ProfileIDKey, profileID),
		goerr.V("status", status),
		goerr.V("error_code", retrieveErr.ErrorCode),
	}

	switch {
	case retrieveErr.ErrorCode == "invalid_grant",
		status == http.StatusBadRequest,
		status == http.StatusUnauthorized:
		return goerr.Wrap(model.ErrCredentialsNotFound, "token refresh rejected", values...)
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return goerr.Wrap(model.ErrBackendUnavailable, "token endpoint unavailable",
			append(values, goerr.V("error", err.Error()))...)
	default:
		return goerr.Wrap(err, "failed to refresh token", values...)
	}
}
