package calendar

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/backoff"
)

// NewClientForTest wraps an API client built against a test server
func NewClientForTest(api *calendar.Service, profileID model.ProfileID, policy backoff.Policy) Service {
	return newClient(api, profileID, policy)
}

// NewPersistingTokenSourceForTest exposes the refreshing token source
func NewPersistingTokenSourceForTest(ctx context.Context, cfg *oauth2.Config, profileID model.ProfileID, cred *model.Credential, creds interfaces.CredentialRepository) oauth2.TokenSource {
	return newPersistingTokenSource(ctx, cfg, profileID, cred, creds)
}
