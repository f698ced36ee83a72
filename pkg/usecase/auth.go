package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/secmon-lab/ticketcal/pkg/domain/interfaces"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

const (
	stateAudience = "ticketcal-oauth-state"
	stateTTL      = 10 * time.Minute
)

// AuthUseCase handles Google login of profiles and revocation of their access
type AuthUseCase struct {
	repo       interfaces.Repository
	oauth      *oauth2.Config
	dispatcher interfaces.Dispatcher
	channel    *ChannelUseCase
	stateKey   []byte
	now        func() time.Time
}

func stateKey(apiToken string) []byte {
	sum := sha256.Sum256([]byte("oauth-state:" + apiToken))
	return sum[:]
}

// LoginURL returns the consent page URL for a profile. Offline access with forced consent
// makes Google issue a refresh token on every login.
func (uc *AuthUseCase) LoginURL(profileID model.ProfileID) (string, error) {
	if uc.oauth == nil {
		return "", goerr.Wrap(ErrNotConfigured, "OAuth client is not configured")
	}
	if err := profileID.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid profile for login")
	}

	state, err := uc.signState(profileID)
	if err != nil {
		return "", err
	}
	return uc.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (uc *AuthUseCase) signState(profileID model.ProfileID) (string, error) {
	now := uc.now()
	token, err := jwt.NewBuilder().
		Subject(profileID.String()).
		Audience([]string{stateAudience}).
		IssuedAt(now).
		Expiration(now.Add(stateTTL)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build OAuth state")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, uc.stateKey))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign OAuth state")
	}
	return string(signed), nil
}

// ParseState verifies a state issued by LoginURL and returns its profile
func (uc *AuthUseCase) ParseState(state string) (model.ProfileID, error) {
	token, err := jwt.Parse([]byte(state),
		jwt.WithKey(jwa.HS256, uc.stateKey),
		jwt.WithValidate(true),
		jwt.WithAudience(stateAudience),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidOAuthState, "failed to verify OAuth state", goerr.V("error", err.Error()))
	}

	profileID, err := model.ParseProfileID(token.Subject())
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidOAuthState, "OAuth state has no profile", goerr.V("subject", token.Subject()))
	}
	return profileID, nil
}

// OnOAuthCallback exchanges the authorization code, stores the resulting credential and
// dispatches the first channel setup for the profile
func (uc *AuthUseCase) OnOAuthCallback(ctx context.Context, profileID model.ProfileID, code string) error {
	if uc.oauth == nil {
		return goerr.Wrap(ErrNotConfigured, "OAuth client is not configured")
	}
	if code == "" {
		return goerr.New("authorization code is required", goerr.V(model.ProfileIDKey, profileID))
	}

	token, err := uc.oauth.Exchange(ctx, code)
	if err != nil {
		return goerr.Wrap(err, "failed to exchange authorization code", goerr.V(model.ProfileIDKey, profileID))
	}

	cred := model.NewCredential(token)
	if cred.RefreshToken == "" {
		// Keep a refresh token from an earlier grant when Google omits it
		if prev, err := uc.repo.Credential().Get(ctx, profileID); err == nil {
			cred.RefreshToken = prev.RefreshToken
		} else if !errors.Is(err, model.ErrCredentialsNotFound) {
			return goerr.Wrap(err, "failed to read previous credential", goerr.V(model.ProfileIDKey, profileID))
		}
	}

	if err := uc.repo.Credential().Put(ctx, profileID, cred); err != nil {
		return goerr.Wrap(err, "failed to store credential", goerr.V(model.ProfileIDKey, profileID))
	}
	logging.From(ctx).Info("profile authorized", "profile_id", profileID, "credential", cred)

	if uc.dispatcher != nil {
		if err := uc.dispatcher.SetupChannel(ctx, profileID); err != nil {
			return goerr.Wrap(err, "failed to dispatch channel setup", goerr.V(model.ProfileIDKey, profileID))
		}
	}
	return nil
}

// Revoke stops syncing a profile: its channel is stopped (best effort) and its channel
// record, renewal entry, sync cursor and credential are removed
func (uc *AuthUseCase) Revoke(ctx context.Context, profileID model.ProfileID) error {
	if err := uc.channel.Stop(ctx, profileID); err != nil {
		logging.From(ctx).Warn("failed to stop channel on revoke", "profile_id", profileID, "error", err)
	}

	if err := uc.repo.Schedule().Remove(ctx, profileID); err != nil {
		return goerr.Wrap(err, "failed to remove renewal entry", goerr.V(model.ProfileIDKey, profileID))
	}
	if err := uc.repo.Channel().Delete(ctx, profileID); err != nil {
		return goerr.Wrap(err, "failed to delete channel record", goerr.V(model.ProfileIDKey, profileID))
	}
	if err := uc.repo.SyncCursor().DeleteSyncToken(ctx, profileID); err != nil {
		return goerr.Wrap(err, "failed to delete sync token", goerr.V(model.ProfileIDKey, profileID))
	}
	if err := uc.repo.Credential().Delete(ctx, profileID); err != nil {
		return goerr.Wrap(err, "failed to delete credential", goerr.V(model.ProfileIDKey, profileID))
	}

	logging.From(ctx).Info("profile revoked", "profile_id", profileID)
	return nil
}
