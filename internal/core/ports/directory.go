package ports

import (
	"context"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// Directory is the collection of credential records consulted at login and
// registration. Email is the unique key and is matched exactly.
type Directory interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
	// Create returns domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, cred *domain.Credential) error
	// Update replaces the profile part of the record keyed by profile.Email,
	// keeping the password hash. Returns domain.ErrUserNotFound when absent.
	Update(ctx context.Context, profile *domain.UserProfile) error
	// Delete removes the record matching both profile.Email and profile.ID.
	// Deleting a missing record succeeds.
	Delete(ctx context.Context, profile *domain.UserProfile) error
}
