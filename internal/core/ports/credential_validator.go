package ports

import (
	"context"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// CredentialValidator checks credentials and shapes identities. Every
// profile it returns has the password stripped.
type CredentialValidator interface {
	Login(ctx context.Context, email, password string) (*domain.UserProfile, error)
	Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.UserProfile, error)
	// Unregister withdraws an account created by Register whose session
	// could not be established.
	Unregister(ctx context.Context, profile *domain.UserProfile) error
	// UpdateProfile merges update into current. current == nil means no
	// session is active and yields domain.ErrNotAuthenticated.
	UpdateProfile(ctx context.Context, current *domain.UserProfile, update domain.ProfileUpdate) (*domain.UserProfile, error)
}
