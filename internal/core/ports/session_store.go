package ports

import (
	"context"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// SessionStoreKey is the well-known key the current identity is stored under.
const SessionStoreKey = "auth_user"

// SessionStore persists the current identity across process restarts.
// Only the session manager may use it.
type SessionStore interface {
	// Save overwrites the stored snapshot with a full copy of profile.
	Save(ctx context.Context, profile *domain.UserProfile) error
	// Load returns (nil, nil) when nothing is stored or the stored value
	// cannot be decoded. Errors wrap domain.ErrStorageUnavailable.
	Load(ctx context.Context) (*domain.UserProfile, error)
	// Clear removes the stored snapshot. Clearing an empty store succeeds.
	Clear(ctx context.Context) error
}
