package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sponsormatch/matchbot/internal/pkg/metrics"
	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

type subscriber struct {
	id uint64
	fn func(domain.SessionSnapshot)
}

// SessionManager owns the process-wide session: state, busy flag and the
// identity currently signed in. It is the only writer of the SessionStore.
//
// Every transition is published synchronously, in order, to all subscribers.
// Subscribers receive their own deep copy of the snapshot.
type SessionManager struct {
	validator ports.CredentialValidator
	store     ports.SessionStore
	notifier  ports.Notifier
	log       zerolog.Logger
	now       func() time.Time

	initOnce sync.Once
	// loadMu is held by Init while it reads the store and by Logout, so a
	// logout never lands between the load and the state it produces.
	loadMu sync.Mutex

	mu      sync.Mutex
	state   domain.SessionState
	profile *domain.UserProfile
	busy    bool
	version uint64
	subs    []subscriber
	nextSub uint64

	// deliverMu is taken before mu is released so deliveries happen in
	// version order.
	deliverMu sync.Mutex
}

var _ ports.SessionManager = (*SessionManager)(nil)

// NewSessionManager returns a manager in the Uninitialized state. notifier
// may be nil. Call Init to load any persisted session.
func NewSessionManager(validator ports.CredentialValidator, store ports.SessionStore, notifier ports.Notifier, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		validator: validator,
		store:     store,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
		state:     domain.StateUninitialized,
	}
}

// Init moves Uninitialized → Loading → Authenticated|Anonymous by reading the
// session store. Only the first call has any effect; later calls return
// immediately, even if the first is still running.
func (m *SessionManager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		m.loadMu.Lock()
		defer m.loadMu.Unlock()

		_ = m.transition(func() error {
			m.state = domain.StateLoading
			return nil
		})

		profile, err := m.store.Load(ctx)
		if err != nil {
			metrics.SessionStoreErrorsTotal.WithLabelValues("load").Inc()
			m.log.Warn().Err(err).Msg("failed to load persisted session, starting anonymous")
			profile = nil
		}

		_ = m.transition(func() error {
			if profile != nil {
				m.state = domain.StateAuthenticated
				m.profile = profile
			} else {
				m.state = domain.StateAnonymous
				m.profile = nil
			}
			return nil
		})

		m.log.Info().Str("state", m.Snapshot().State.String()).Msg("session initialised")
	})
}

// Login authenticates against the validator and, on success, persists and
// publishes the new identity. A previous session is replaced. On failure the
// session is left exactly as it was and the validator error is returned.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	const op = "login"
	if err := m.begin(op, false); err != nil {
		return nil, err
	}

	profile, err := m.validator.Login(ctx, email, password)
	if err == nil {
		err = m.persist(ctx, profile)
	}
	if err != nil {
		m.fail(ctx, op, "Login failed", err)
		return nil, err
	}

	m.succeed(op, profile)
	m.notify(ctx, "Welcome back!", fmt.Sprintf("You're now logged in as %s", profile.Name), domain.VariantDefault)
	return profile.Clone(), nil
}

// Register creates an account and signs it in. If the session cannot be
// persisted the new account is withdrawn, so a retry with the same email
// starts clean.
func (m *SessionManager) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.UserProfile, error) {
	const op = "register"
	if err := m.begin(op, false); err != nil {
		return nil, err
	}

	profile, err := m.validator.Register(ctx, email, password, name, role)
	if err == nil {
		if err = m.persist(ctx, profile); err != nil {
			if uerr := m.validator.Unregister(context.WithoutCancel(ctx), profile); uerr != nil {
				m.log.Error().Err(uerr).Str("user_id", profile.ID).Msg("failed to withdraw account after session persist failure")
			}
		}
	}
	if err != nil {
		m.fail(ctx, op, "Registration failed", err)
		return nil, err
	}

	m.succeed(op, profile)
	m.notify(ctx, "Registration successful!", fmt.Sprintf("Welcome to BrandMatchBot, %s!", profile.Name), domain.VariantDefault)
	return profile.Clone(), nil
}

// Logout clears the store and always ends Anonymous. A store failure is
// reported as a notification only; it never reaches the caller. A logout
// issued while Init is loading waits for the load to finish first.
func (m *SessionManager) Logout(ctx context.Context) {
	const op = "logout"
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	clearErr := m.store.Clear(ctx)

	_ = m.transition(func() error {
		m.state = domain.StateAnonymous
		m.profile = nil
		return nil
	})

	if clearErr != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("clear").Inc()
		metrics.AuthOperationsTotal.WithLabelValues(op, "failure").Inc()
		m.log.Warn().Err(clearErr).Msg("failed to clear persisted session")
		m.notify(ctx, "Logout failed", "There was an issue logging you out", domain.VariantDestructive)
		return
	}

	metrics.AuthOperationsTotal.WithLabelValues(op, "success").Inc()
	m.notify(ctx, "Logged out", "You have been successfully logged out", domain.VariantDefault)
}

// UpdateProfile merges update into the signed-in profile and persists it.
func (m *SessionManager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	const op = "update_profile"
	if err := m.begin(op, true); err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			m.notify(ctx, "Update failed", userMessage(err), domain.VariantDestructive)
		}
		return nil, err
	}

	m.mu.Lock()
	current := m.profile.Clone()
	m.mu.Unlock()

	updated, err := m.validator.UpdateProfile(ctx, current, update)
	if err == nil {
		err = m.persist(ctx, updated)
	}
	if err != nil {
		m.fail(ctx, op, "Update failed", err)
		return nil, err
	}

	m.succeed(op, updated)
	m.notify(ctx, "Profile updated", "Your profile has been successfully updated", domain.VariantDefault)
	return updated.Clone(), nil
}

// Snapshot returns a consistent copy of the current session.
func (m *SessionManager) Snapshot() domain.SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn for every future transition.
func (m *SessionManager) Subscribe(fn func(domain.SessionSnapshot)) func() {
	m.mu.Lock()
	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// begin raises the busy flag. It refuses while another mutating call is in
// flight or before the initial load has settled. needAuth additionally
// requires an authenticated session.
func (m *SessionManager) begin(op string, needAuth bool) error {
	err := m.transition(func() error {
		if m.busy || !m.state.Settled() {
			return domain.ErrBusy
		}
		if needAuth && m.state != domain.StateAuthenticated {
			return domain.ErrNotAuthenticated
		}
		m.busy = true
		return nil
	})
	if err != nil {
		result := "failure"
		if errors.Is(err, domain.ErrBusy) {
			result = "busy"
		}
		metrics.AuthOperationsTotal.WithLabelValues(op, result).Inc()
	}
	return err
}

func (m *SessionManager) succeed(op string, profile *domain.UserProfile) {
	_ = m.transition(func() error {
		m.busy = false
		m.state = domain.StateAuthenticated
		m.profile = profile.Clone()
		return nil
	})
	metrics.AuthOperationsTotal.WithLabelValues(op, "success").Inc()
	m.log.Info().Str("op", op).Str("user_id", profile.ID).Str("role", string(profile.Role)).Msg("session updated")
}

func (m *SessionManager) fail(ctx context.Context, op, title string, err error) {
	_ = m.transition(func() error {
		m.busy = false
		return nil
	})
	metrics.AuthOperationsTotal.WithLabelValues(op, "failure").Inc()
	m.log.Debug().Err(err).Str("op", op).Msg("session operation failed")
	m.notify(ctx, title, userMessage(err), domain.VariantDestructive)
}

func (m *SessionManager) persist(ctx context.Context, profile *domain.UserProfile) error {
	if err := m.store.Save(ctx, profile); err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("save").Inc()
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// transition applies mutate under the state lock and, if it succeeds,
// publishes the resulting snapshot. Nothing is published when mutate fails.
func (m *SessionManager) transition(mutate func() error) error {
	m.mu.Lock()
	prevState := m.state
	if err := mutate(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.version++
	snap := m.snapshotLocked()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)

	m.deliverMu.Lock()
	m.mu.Unlock()
	defer m.deliverMu.Unlock()

	if snap.State != prevState {
		metrics.SessionTransitionsTotal.WithLabelValues(snap.State.String()).Inc()
	}
	for _, s := range subs {
		view := snap
		view.Profile = snap.Profile.Clone()
		s.fn(view)
	}
	return nil
}

func (m *SessionManager) snapshotLocked() domain.SessionSnapshot {
	return domain.SessionSnapshot{
		State:   m.state,
		Profile: m.profile.Clone(),
		Busy:    m.busy,
		Version: m.version,
	}
}

func (m *SessionManager) notify(ctx context.Context, title, description string, variant domain.NotificationVariant) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, domain.Notification{
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   m.now().UTC(),
	})
}

// userMessage turns an operation error into text safe to show the user.
func userMessage(err error) string {
	for _, known := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrDuplicateEmail,
		domain.ErrNotAuthenticated,
		domain.ErrInvalidRole,
		domain.ErrInvalidInput,
		domain.ErrBusy,
		domain.ErrStorageUnavailable,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "An unknown error occurred"
}
