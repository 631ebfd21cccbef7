package ports

import (
	"context"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// SessionReader is the read-only face of the session manager handed to
// consumers such as the access gate and the HTTP layer.
type SessionReader interface {
	Snapshot() domain.SessionSnapshot
	// Subscribe registers fn for every future transition and returns a func
	// that removes it. fn runs synchronously on the publishing goroutine and
	// must not call mutating SessionManager methods.
	Subscribe(fn func(domain.SessionSnapshot)) (unsubscribe func())
}

// SessionManager owns the process-wide session.
type SessionManager interface {
	SessionReader
	Init(ctx context.Context)
	Login(ctx context.Context, email, password string) (*domain.UserProfile, error)
	Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.UserProfile, error)
	// Logout never fails. Called during the initial load it waits for the
	// load to settle and then signs out.
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.UserProfile, error)
}
