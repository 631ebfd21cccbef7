package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubValidator struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.UserProfile, error)
	registerFn func(ctx context.Context, email, password, name string, role domain.Role) (*domain.UserProfile, error)
	updateFn   func(ctx context.Context, current *domain.UserProfile, update domain.ProfileUpdate) (*domain.UserProfile, error)
	unregFn    func(ctx context.Context, profile *domain.UserProfile) error
}

func (v *stubValidator) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	return v.loginFn(ctx, email, password)
}

func (v *stubValidator) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.UserProfile, error) {
	return v.registerFn(ctx, email, password, name, role)
}

func (v *stubValidator) Unregister(ctx context.Context, profile *domain.UserProfile) error {
	if v.unregFn == nil {
		return nil
	}
	return v.unregFn(ctx, profile)
}

func (v *stubValidator) UpdateProfile(ctx context.Context, current *domain.UserProfile, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	return v.updateFn(ctx, current, update)
}

type stubStore struct {
	mu       sync.Mutex
	profile  *domain.UserProfile
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
	loadGate chan struct{} // if set, Load blocks until it is closed
}

func (s *stubStore) Save(_ context.Context, p *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.profile = p.Clone()
	return nil
}

func (s *stubStore) Load(context.Context) (*domain.UserProfile, error) {
	if s.loadGate != nil {
		<-s.loadGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.profile.Clone(), nil
}

func (s *stubStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.profile = nil
	return nil
}

func (s *stubStore) stored() *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, item domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
}

func (n *recordingNotifier) last(t *testing.T) domain.Notification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		t.Fatalf("expected a notification, got none")
	}
	return n.items[len(n.items)-1]
}

// newSeededValidator returns a real CredentialService over a directory holding
// the creator account, with no simulated latency.
func newSeededValidator(t *testing.T) *CredentialService {
	t.Helper()
	dir := newStubDirectory()
	dir.add(t, creatorProfile(), "password123")
	return newTestCredentialService(dir)
}

func newTestManager(t *testing.T, store *stubStore) (*SessionManager, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	m := NewSessionManager(newSeededValidator(t), store, n, zerolog.Nop())
	m.Init(context.Background())
	return m, n
}

// ---------------------------------------------------------------------------
// Init
// ---------------------------------------------------------------------------

func TestSessionManager_Init_EmptyStore(t *testing.T) {
	m := NewSessionManager(newSeededValidator(t), &stubStore{}, nil, zerolog.Nop())

	if got := m.Snapshot().State; got != domain.StateUninitialized {
		t.Fatalf("expected uninitialized before Init, got %v", got)
	}

	var seen []domain.SessionState
	m.Subscribe(func(s domain.SessionSnapshot) { seen = append(seen, s.State) })
	m.Init(context.Background())

	if len(seen) != 2 || seen[0] != domain.StateLoading || seen[1] != domain.StateAnonymous {
		t.Fatalf("expected [loading anonymous], got %v", seen)
	}
	if snap := m.Snapshot(); snap.Profile != nil || snap.Busy {
		t.Fatalf("unexpected snapshot after Init: %+v", snap)
	}
}

func TestSessionManager_Init_RestoresPersistedSession(t *testing.T) {
	p := creatorProfile()
	m, _ := newTestManager(t, &stubStore{profile: &p})

	snap := m.Snapshot()
	if !snap.Authenticated() || snap.Profile.ID != "creator-123" {
		t.Fatalf("expected restored creator session, got %+v", snap)
	}
}

func TestSessionManager_Init_LoadErrorFallsBackToAnonymous(t *testing.T) {
	m, _ := newTestManager(t, &stubStore{loadErr: domain.ErrStorageUnavailable})

	if got := m.Snapshot().State; got != domain.StateAnonymous {
		t.Fatalf("expected anonymous, got %v", got)
	}
}

func TestSessionManager_Init_RunsOnce(t *testing.T) {
	store := &stubStore{}
	m, _ := newTestManager(t, store)
	if _, err := m.Login(context.Background(), "creator@example.com", "password123"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	store.mu.Lock()
	store.profile = nil
	store.mu.Unlock()
	m.Init(context.Background())

	if !m.Snapshot().Authenticated() {
		t.Fatalf("second Init must not reload the store")
	}
}

// ---------------------------------------------------------------------------
// Login / Register
// ---------------------------------------------------------------------------

func TestSessionManager_Login_Success(t *testing.T) {
	store := &stubStore{}
	m, n := newTestManager(t, store)

	got, err := m.Login(context.Background(), "creator@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if got.Name != "Alex Creator" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	snap := m.Snapshot()
	if !snap.Authenticated() || snap.Busy {
		t.Fatalf("expected authenticated idle session, got %+v", snap)
	}
	if stored := store.stored(); stored == nil || stored.ID != "creator-123" {
		t.Fatalf("expected profile persisted, got %+v", stored)
	}

	note := n.last(t)
	if note.Title != "Welcome back!" || note.Description != "You're now logged in as Alex Creator" {
		t.Fatalf("unexpected notification: %+v", note)
	}
}

func TestSessionManager_Login_FailureLeavesStateUnchanged(t *testing.T) {
	store := &stubStore{}
	m, n := newTestManager(t, store)
	before := m.Snapshot()

	_, err := m.Login(context.Background(), "creator@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	after := m.Snapshot()
	if after.State != before.State || after.Profile != nil || after.Busy {
		t.Fatalf("state changed on failure: before %+v after %+v", before, after)
	}
	if store.saves != 0 {
		t.Fatalf("expected no store write, got %d", store.saves)
	}

	note := n.last(t)
	if note.Title != "Login failed" || note.Variant != domain.VariantDestructive || note.Description != "invalid email or password" {
		t.Fatalf("unexpected notification: %+v", note)
	}
}

func TestSessionManager_Login_ReplacesExistingSession(t *testing.T) {
	p := creatorProfile()
	p.ID = "someone-else"
	m, _ := newTestManager(t, &stubStore{profile: &p})

	got, err := m.Login(context.Background(), "creator@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if got.ID != "creator-123" || m.Snapshot().Profile.ID != "creator-123" {
		t.Fatalf("expected session replaced, got %+v", m.Snapshot().Profile)
	}
}

func TestSessionManager_Login_SaveFailure(t *testing.T) {
	store := &stubStore{saveErr: domain.ErrStorageUnavailable}
	m, n := newTestManager(t, store)

	_, err := m.Login(context.Background(), "creator@example.com", "password123")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if m.Snapshot().State != domain.StateAnonymous {
		t.Fatalf("expected anonymous after failed save, got %v", m.Snapshot().State)
	}
	if n.last(t).Title != "Login failed" {
		t.Fatalf("unexpected notification: %+v", n.last(t))
	}
}

func TestSessionManager_RegisterThenUpdateProfile(t *testing.T) {
	store := &stubStore{}
	m, n := newTestManager(t, store)

	created, err := m.Register(context.Background(), "new@example.com", "secret", "Nova", domain.RoleCreator)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if created.Plan != domain.PlanFree || !m.Snapshot().Authenticated() {
		t.Fatalf("unexpected register result: %+v", created)
	}
	if n.last(t).Description != "Welcome to BrandMatchBot, Nova!" {
		t.Fatalf("unexpected notification: %+v", n.last(t))
	}

	bio := "hello"
	updated, err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Bio != "hello" || updated.ID != created.ID {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updatedAt > createdAt, got %v <= %v", updated.UpdatedAt, updated.CreatedAt)
	}
	if store.stored().Bio != "hello" {
		t.Fatalf("expected updated profile persisted")
	}
	if n.last(t).Title != "Profile updated" {
		t.Fatalf("unexpected notification: %+v", n.last(t))
	}
}

func TestSessionManager_Register_DuplicateEmail(t *testing.T) {
	m, n := newTestManager(t, &stubStore{})

	_, err := m.Register(context.Background(), "creator@example.com", "x", "Dup", domain.RoleCreator)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if m.Snapshot().State != domain.StateAnonymous {
		t.Fatalf("expected anonymous, got %v", m.Snapshot().State)
	}
	if note := n.last(t); note.Title != "Registration failed" || note.Description != "user with this email already exists" {
		t.Fatalf("unexpected notification: %+v", note)
	}
}

func TestSessionManager_RegisterLogoutLogin(t *testing.T) {
	m, _ := newTestManager(t, &stubStore{})

	if _, err := m.Register(context.Background(), "round@example.com", "trip", "Round", domain.RoleBrand); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	m.Logout(context.Background())

	got, err := m.Login(context.Background(), "round@example.com", "trip")
	if err != nil {
		t.Fatalf("Login after Register returned error: %v", err)
	}
	if got.Role != domain.RoleBrand {
		t.Fatalf("expected brand role, got %q", got.Role)
	}
}

func TestSessionManager_Register_PersistFailureWithdrawsAccount(t *testing.T) {
	dir := newStubDirectory()
	store := &stubStore{saveErr: domain.ErrStorageUnavailable}
	m := NewSessionManager(newTestCredentialService(dir), store, &recordingNotifier{}, zerolog.Nop())
	m.Init(context.Background())

	_, err := m.Register(context.Background(), "retry@example.com", "secret", "Retry", domain.RoleCreator)
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if dir.len() != 0 {
		t.Fatalf("expected no directory record after failed register, got %d", dir.len())
	}
	if m.Snapshot().State != domain.StateAnonymous {
		t.Fatalf("expected anonymous, got %v", m.Snapshot().State)
	}

	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()

	got, err := m.Register(context.Background(), "retry@example.com", "secret", "Retry", domain.RoleCreator)
	if err != nil {
		t.Fatalf("retry Register returned error: %v", err)
	}
	if m.Snapshot().State != domain.StateAuthenticated || store.stored().ID != got.ID {
		t.Fatalf("expected retry to sign in and persist, got %+v", m.Snapshot())
	}
}

// ---------------------------------------------------------------------------
// Logout / UpdateProfile
// ---------------------------------------------------------------------------

func TestSessionManager_LogoutDuringInitialLoad(t *testing.T) {
	p := creatorProfile()
	store := &stubStore{profile: &p, loadGate: make(chan struct{})}
	m := NewSessionManager(newSeededValidator(t), store, &recordingNotifier{}, zerolog.Nop())

	loading := make(chan struct{})
	var once sync.Once
	unsubscribe := m.Subscribe(func(s domain.SessionSnapshot) {
		if s.State == domain.StateLoading {
			once.Do(func() { close(loading) })
		}
	})
	defer unsubscribe()

	initDone := make(chan struct{})
	go func() {
		m.Init(context.Background())
		close(initDone)
	}()
	<-loading

	logoutDone := make(chan struct{})
	go func() {
		m.Logout(context.Background())
		close(logoutDone)
	}()

	select {
	case <-logoutDone:
		t.Fatalf("Logout returned while the initial load was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.loadGate)
	<-initDone
	<-logoutDone

	if s := m.Snapshot(); s.State != domain.StateAnonymous || s.Profile != nil {
		t.Fatalf("expected anonymous after logout, got %+v", s)
	}
	if store.stored() != nil {
		t.Fatalf("expected store cleared")
	}
}

func TestSessionManager_Logout(t *testing.T) {
	store := &stubStore{}
	m, n := newTestManager(t, store)
	if _, err := m.Login(context.Background(), "creator@example.com", "password123"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	m.Logout(context.Background())
	m.Logout(context.Background())

	if snap := m.Snapshot(); snap.State != domain.StateAnonymous || snap.Profile != nil {
		t.Fatalf("expected anonymous, got %+v", snap)
	}
	if store.stored() != nil {
		t.Fatalf("expected store cleared")
	}
	if n.last(t).Title != "Logged out" {
		t.Fatalf("unexpected notification: %+v", n.last(t))
	}
}

func TestSessionManager_Logout_ClearFailureStillSignsOut(t *testing.T) {
	p := creatorProfile()
	store := &stubStore{profile: &p, clearErr: domain.ErrStorageUnavailable}
	m, n := newTestManager(t, store)

	m.Logout(context.Background())

	if m.Snapshot().State != domain.StateAnonymous {
		t.Fatalf("expected anonymous, got %v", m.Snapshot().State)
	}
	if note := n.last(t); note.Title != "Logout failed" || note.Variant != domain.VariantDestructive {
		t.Fatalf("unexpected notification: %+v", note)
	}
}

func TestSessionManager_UpdateProfile_Anonymous(t *testing.T) {
	m, n := newTestManager(t, &stubStore{})
	name := "x"

	_, err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name})
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if m.Snapshot().Busy {
		t.Fatalf("busy flag left raised")
	}
	if note := n.last(t); note.Title != "Update failed" || note.Description != "user not authenticated" {
		t.Fatalf("unexpected notification: %+v", note)
	}
}

// ---------------------------------------------------------------------------
// Concurrency and publication
// ---------------------------------------------------------------------------

func TestSessionManager_BeforeInitIsBusy(t *testing.T) {
	m := NewSessionManager(newSeededValidator(t), &stubStore{}, nil, zerolog.Nop())

	_, err := m.Login(context.Background(), "creator@example.com", "password123")
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy before Init, got %v", err)
	}
}

func TestSessionManager_OverlappingCallIsBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	v := &stubValidator{
		loginFn: func(context.Context, string, string) (*domain.UserProfile, error) {
			close(entered)
			<-release
			p := creatorProfile()
			return &p, nil
		},
		registerFn: func(context.Context, string, string, string, domain.Role) (*domain.UserProfile, error) {
			t.Errorf("register must not reach the validator while busy")
			return nil, nil
		},
	}
	m := NewSessionManager(v, &stubStore{}, nil, zerolog.Nop())
	m.Init(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "creator@example.com", "password123")
		done <- err
	}()
	<-entered

	if !m.Snapshot().Busy {
		t.Fatalf("expected busy while login is in flight")
	}
	_, err := m.Register(context.Background(), "x@example.com", "x", "X", domain.RoleBrand)
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("login did not finish")
	}
	if snap := m.Snapshot(); !snap.Authenticated() || snap.Busy {
		t.Fatalf("expected authenticated idle session, got %+v", snap)
	}
}

func TestSessionManager_SubscribersSeeOrderedVersions(t *testing.T) {
	m, _ := newTestManager(t, &stubStore{})

	var versions []uint64
	var last domain.SessionSnapshot
	unsubscribe := m.Subscribe(func(s domain.SessionSnapshot) {
		versions = append(versions, s.Version)
		last = s
	})

	if _, err := m.Login(context.Background(), "creator@example.com", "password123"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] != versions[i-1]+1 {
			t.Fatalf("versions not contiguous: %v", versions)
		}
	}
	if len(versions) < 2 || !last.Authenticated() || last.Busy {
		t.Fatalf("expected busy then authenticated deliveries, got %v / %+v", versions, last)
	}

	unsubscribe()
	unsubscribe()
	count := len(versions)
	m.Logout(context.Background())
	if len(versions) != count {
		t.Fatalf("delivery after unsubscribe")
	}
}

func TestSessionManager_SnapshotsAreIsolated(t *testing.T) {
	m, _ := newTestManager(t, &stubStore{})
	var delivered *domain.UserProfile
	m.Subscribe(func(s domain.SessionSnapshot) {
		if s.Profile != nil {
			delivered = s.Profile
		}
	})
	if _, err := m.Login(context.Background(), "creator@example.com", "password123"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	snap := m.Snapshot()
	snap.Profile.Name = "mutated"
	snap.Profile.SocialConnections[0].Followers = 1
	delivered.Name = "also mutated"

	again := m.Snapshot()
	if again.Profile.Name != "Alex Creator" || again.Profile.SocialConnections[0].Followers != 125000 {
		t.Fatalf("session mutated through a snapshot: %+v", again.Profile)
	}
}
