package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

// Latency is the simulated backend delay applied before each validator call.
type Latency struct {
	Login    time.Duration
	Register time.Duration
	Update   time.Duration
}

// DefaultLatency mirrors the delays of the hosted mock backend.
var DefaultLatency = Latency{
	Login:    800 * time.Millisecond,
	Register: time.Second,
	Update:   800 * time.Millisecond,
}

// CredentialOption customises a CredentialService.
type CredentialOption func(*CredentialService)

// WithLatency sets the simulated delay per operation.
func WithLatency(l Latency) CredentialOption {
	return func(s *CredentialService) { s.latency = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CredentialOption {
	return func(s *CredentialService) { s.now = now }
}

// WithHashCost sets the bcrypt cost used for new registrations.
func WithHashCost(cost int) CredentialOption {
	return func(s *CredentialService) { s.hashCost = cost }
}

// CredentialService implements ports.CredentialValidator over a Directory.
type CredentialService struct {
	dir      ports.Directory
	log      zerolog.Logger
	now      func() time.Time
	latency  Latency
	hashCost int

	mu     sync.Mutex
	lastID int64

	dummyOnce sync.Once
	dummyHash []byte
}

var _ ports.CredentialValidator = (*CredentialService)(nil)

func NewCredentialService(dir ports.Directory, log zerolog.Logger, opts ...CredentialOption) *CredentialService {
	s := &CredentialService{
		dir:      dir,
		log:      log,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CredentialService) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	if err := wait(ctx, s.latency.Login); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	cred, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Keep the unknown-email path as slow as a wrong password.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return cred.Profile.Clone(), nil
}

func (s *CredentialService) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.UserProfile, error) {
	if err := wait(ctx, s.latency.Register); err != nil {
		return nil, err
	}
	if email == "" || password == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if !role.SelfService() {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.dir.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.stamp(time.Time{})
	profile := domain.UserProfile{
		ID:                s.nextID(role, now),
		Email:             email,
		Name:              name,
		Role:              role,
		Plan:              domain.PlanFree,
		SocialConnections: []domain.SocialConnection{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.dir.Create(ctx, &domain.Credential{Profile: profile, PasswordHash: string(hash)}); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", profile.ID).Str("role", string(role)).Msg("account registered")
	return profile.Clone(), nil
}

func (s *CredentialService) Unregister(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil {
		return nil
	}
	if err := s.dir.Delete(ctx, profile); err != nil {
		return fmt.Errorf("unregister: %w", err)
	}
	s.log.Info().Str("user_id", profile.ID).Msg("account registration withdrawn")
	return nil
}

func (s *CredentialService) UpdateProfile(ctx context.Context, current *domain.UserProfile, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	if current == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if update.Plan != nil && !update.Plan.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if err := wait(ctx, s.latency.Update); err != nil {
		return nil, err
	}

	merged := update.ApplyTo(current)
	merged.UpdatedAt = s.stamp(current.UpdatedAt)

	if err := s.dir.Update(ctx, merged); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		// Sessions restored from durable storage can outlive a volatile directory.
		s.log.Warn().Str("user_id", merged.ID).Msg("profile missing from directory, updating session only")
	}

	return merged, nil
}

// stamp returns the current time at millisecond precision, forced strictly
// after prev.
func (s *CredentialService) stamp(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

// nextID builds "{role}-{unixMillis}", bumping the timestamp when two
// registrations land in the same millisecond.
func (s *CredentialService) nextID(role domain.Role, now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("%s-%d", role, ms)
}

func (s *CredentialService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	})
	return s.dummyHash
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
