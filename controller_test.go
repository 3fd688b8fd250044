package authsession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/streamvault/authsession/credstore"
)

// stubAuthenticator scripts collaborator behavior per call.
type stubAuthenticator struct {
	mu          sync.Mutex
	loginResult LoginResult
	loginErr    error
	whoAmI      func(call int) (*Identity, error)
	whoAmICalls int
}

func (s *stubAuthenticator) Authenticate(context.Context, string, string) (LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginErr != nil {
		return LoginResult{}, s.loginErr
	}
	return s.loginResult, nil
}

func (s *stubAuthenticator) WhoAmI(context.Context) (*Identity, error) {
	s.mu.Lock()
	s.whoAmICalls++
	call := s.whoAmICalls
	fn := s.whoAmI
	s.mu.Unlock()

	if fn == nil {
		return nil, ErrUnauthorized
	}
	return fn(call)
}

func (s *stubAuthenticator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.whoAmICalls
}

func newTestController(t *testing.T, auth Authenticator, durable credstore.Store) *Controller {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendMemory

	b := New().WithConfig(cfg).WithAuthenticator(auth)
	if durable != nil {
		b = b.WithStore(durable)
	}
	ctrl, err := b.Build()
	if err != nil {
		t.Fatalf("build controller: %v", err)
	}
	return ctrl
}

func seededStore(t *testing.T, credential string) *credstore.Memory {
	t.Helper()

	store := credstore.NewMemory()
	if err := store.Set(context.Background(), credential); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestHydrateWithoutCredentialSettlesReady(t *testing.T) {
	auth := &stubAuthenticator{}
	ctrl := newTestController(t, auth, nil)

	if snap := ctrl.Snapshot(); snap.Ready {
		t.Fatal("fresh controller must not be ready")
	}

	ctrl.Hydrate(context.Background())

	snap := ctrl.Snapshot()
	if !snap.Ready {
		t.Fatal("hydrate no-op must settle readiness")
	}
	if snap.Authenticated {
		t.Fatal("no credential means anonymous")
	}
	if auth.calls() != 0 {
		t.Fatalf("who-am-i must not be called without a credential, got %d calls", auth.calls())
	}
}

func TestLoginHydratesAndConfirmsIdentity(t *testing.T) {
	auth := &stubAuthenticator{
		loginResult: LoginResult{
			Credential: "tok1",
			Identity:   &Identity{ID: 1, Role: "creator"},
		},
		whoAmI: func(int) (*Identity, error) {
			return &Identity{ID: 1, Email: "a@b.com", Username: "a", Role: "creator"}, nil
		},
	}
	ctrl := newTestController(t, auth, nil)

	if err := ctrl.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	snap := ctrl.Snapshot()
	if !snap.Authenticated || snap.Credential != "tok1" {
		t.Fatalf("expected authenticated session with tok1, got %+v", snap)
	}
	if snap.Role != RoleCreator {
		t.Fatalf("role = %q, want %q", snap.Role, RoleCreator)
	}
	if snap.Identity == nil || snap.Identity.ID != 1 {
		t.Fatalf("identity not confirmed: %+v", snap.Identity)
	}
	if !snap.Ready {
		t.Fatal("login hydration must settle readiness")
	}
}

func TestLoginRejectedLeavesStateUntouched(t *testing.T) {
	auth := &stubAuthenticator{loginErr: ErrInvalidCredentials}
	ctrl := newTestController(t, auth, nil)

	err := ctrl.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	snap := ctrl.Snapshot()
	if snap.Authenticated || snap.Identity != nil || snap.Role != RoleNone {
		t.Fatalf("rejected login must not touch state, got %+v", snap)
	}
	if auth.calls() != 0 {
		t.Fatal("rejected login must not hydrate")
	}
}

func TestLoginThenLogoutLeavesNoResidue(t *testing.T) {
	durable := credstore.NewMemory()
	auth := &stubAuthenticator{
		loginResult: LoginResult{Credential: "tok1", Identity: &Identity{ID: 1, Role: "creator"}},
		whoAmI: func(int) (*Identity, error) {
			return &Identity{ID: 1, Role: "creator"}, nil
		},
	}
	ctrl := newTestController(t, auth, durable)
	ctrl.Hydrate(context.Background())
	before := ctrl.Snapshot()

	if err := ctrl.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	ctrl.Logout()

	after := ctrl.Snapshot()
	if after.Credential != before.Credential ||
		after.Role != before.Role ||
		(after.Identity == nil) != (before.Identity == nil) {
		t.Fatalf("logout left residue: before %+v, after %+v", before, after)
	}
	if cred, _ := durable.Get(context.Background()); cred != "" {
		t.Fatalf("durable credential not removed: %q", cred)
	}
}

func TestHydrationFailureTearsDown(t *testing.T) {
	durable := seededStore(t, "tok-expired")
	auth := &stubAuthenticator{} // nil whoAmI fails with ErrUnauthorized
	ctrl := newTestController(t, auth, durable)

	if snap := ctrl.Snapshot(); !snap.Authenticated {
		t.Fatal("persisted credential must authenticate provisionally")
	}

	ctrl.Hydrate(context.Background())

	snap := ctrl.Snapshot()
	if snap.Authenticated || snap.Identity != nil || snap.Role != RoleNone {
		t.Fatalf("failed hydration must tear down, got %+v", snap)
	}
	if !snap.Ready {
		t.Fatal("readiness must settle even on the failure path")
	}
	if cred, _ := durable.Get(context.Background()); cred != "" {
		t.Fatalf("durable credential not removed: %q", cred)
	}
}

func TestProvisionalRoleFromPersistedCredential(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"role": "creator", "sub": "7"})
	ctrl := newTestController(t, &stubAuthenticator{}, seededStore(t, tok))

	snap := ctrl.Snapshot()
	if snap.Ready {
		t.Fatal("must stay undetermined until first hydration")
	}
	if !snap.Authenticated {
		t.Fatal("persisted credential must read as authenticated")
	}
	if snap.Role != RoleCreator {
		t.Fatalf("provisional role = %q, want %q", snap.Role, RoleCreator)
	}
}

func TestReadyLatchesExactlyOnce(t *testing.T) {
	auth := &stubAuthenticator{}
	ctrl := newTestController(t, auth, nil)

	ctrl.Hydrate(context.Background())
	if !ctrl.Snapshot().Ready {
		t.Fatal("first hydrate must settle readiness")
	}

	// Nothing reverts readiness: not teardown, not another hydrate.
	ctrl.Logout()
	ctrl.Hydrate(context.Background())
	if !ctrl.Snapshot().Ready {
		t.Fatal("readiness must never revert to false")
	}
}

func TestStaleHydrationDiscardedAfterLogout(t *testing.T) {
	release := make(chan struct{})
	durable := seededStore(t, "tok-old")
	auth := &stubAuthenticator{
		whoAmI: func(int) (*Identity, error) {
			<-release
			return &Identity{ID: 1, Role: "admin"}, nil
		},
	}
	ctrl := newTestController(t, auth, durable)

	done := make(chan struct{})
	go func() {
		ctrl.Hydrate(context.Background())
		close(done)
	}()
	waitFor(t, func() bool { return auth.calls() == 1 })

	ctrl.Logout()
	close(release)
	<-done

	snap := ctrl.Snapshot()
	if snap.Authenticated || snap.Identity != nil || snap.Role != RoleNone {
		t.Fatalf("stale hydration resurrected a session: %+v", snap)
	}
}

func TestStaleHydrationDiscardedAfterNewerLogin(t *testing.T) {
	release := make(chan struct{})
	durable := seededStore(t, "tok-old")
	auth := &stubAuthenticator{
		loginResult: LoginResult{Credential: "tok-new", Identity: &Identity{ID: 2, Role: "consumer"}},
		whoAmI: func(call int) (*Identity, error) {
			if call == 1 {
				<-release
				return &Identity{ID: 1, Username: "stale", Role: "admin"}, nil
			}
			return &Identity{ID: 2, Username: "fresh", Role: "consumer"}, nil
		},
	}
	ctrl := newTestController(t, auth, durable)

	done := make(chan struct{})
	go func() {
		ctrl.Hydrate(context.Background())
		close(done)
	}()
	waitFor(t, func() bool { return auth.calls() == 1 })

	if err := ctrl.Login(context.Background(), "b@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	close(release)
	<-done

	snap := ctrl.Snapshot()
	if snap.Credential != "tok-new" {
		t.Fatalf("credential = %q, want tok-new", snap.Credential)
	}
	if snap.Identity == nil || snap.Identity.ID != 2 || snap.Role != RoleConsumer {
		t.Fatalf("state must reflect only the latest credential, got %+v", snap)
	}
}

func TestLoginHydrationFailureClearsSessionSilently(t *testing.T) {
	durable := credstore.NewMemory()
	auth := &stubAuthenticator{
		loginResult: LoginResult{Credential: "tok1", Identity: &Identity{ID: 1, Role: "creator"}},
		// nil whoAmI: hydration fails with ErrUnauthorized
	}
	ctrl := newTestController(t, auth, durable)

	// The exchange succeeded, so Login itself does not fail; the
	// hydration teardown is ambient.
	if err := ctrl.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.Authenticated || snap.Role != RoleNone {
		t.Fatalf("unconfirmed login must not leave a session, got %+v", snap)
	}
	if cred, _ := durable.Get(context.Background()); cred != "" {
		t.Fatalf("durable credential not removed: %q", cred)
	}
}
