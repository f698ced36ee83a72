package interfaces

import (
	"context"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

// SyncCursorRepository keeps the incremental sync token of each profile.
// Page tokens are never persisted.
type SyncCursorRepository interface {
	// GetSyncToken returns an empty string when no token is stored
	GetSyncToken(ctx context.Context, profileID model.ProfileID) (string, error)
	PutSyncToken(ctx context.Context, profileID model.ProfileID, token string) error
	DeleteSyncToken(ctx context.Context, profileID model.ProfileID) error
}
