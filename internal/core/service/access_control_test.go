package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

const testSecret = "test-secret"

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubLocalStore struct {
	values map[string]string // "<sessionID>/<key>" → value
	setErr error
}

func newStubLocalStore() *stubLocalStore {
	return &stubLocalStore{values: make(map[string]string)}
}

func (s *stubLocalStore) composite(sessionID, key string) string {
	return sessionID + "/" + key
}

func (s *stubLocalStore) Get(_ context.Context, sessionID, key string) (string, error) {
	v, ok := s.values[s.composite(sessionID, key)]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (s *stubLocalStore) Set(_ context.Context, sessionID, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[s.composite(sessionID, key)] = value
	return nil
}

func (s *stubLocalStore) Delete(_ context.Context, sessionID, key string) error {
	delete(s.values, s.composite(sessionID, key))
	return nil
}

type stubAuthClient struct {
	token    string
	loginErr error
}

func (c *stubAuthClient) Login(_ context.Context, creds ports.Credentials) (string, error) {
	if c.loginErr != nil {
		return "", c.loginErr
	}
	return c.token, nil
}

func (c *stubAuthClient) Signup(_ context.Context, _ ports.SignupInput) (string, error) {
	if c.loginErr != nil {
		return "", c.loginErr
	}
	return c.token, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mintToken(t *testing.T, userID string, role string, permissions []string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId":      userID,
		"email":       userID + "@example.com",
		"username":    userID,
		"role":        role,
		"permissions": permissions,
		"exp":         time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func newAccess(store *stubLocalStore, auth *stubAuthClient) *AccessControl {
	return NewAccessControl("sess-1", store, auth, testSecret, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Initialize
// ---------------------------------------------------------------------------

func TestAccessControl_Initialize_NoCredential(t *testing.T) {
	a := newAccess(newStubLocalStore(), &stubAuthClient{})
	a.Initialize(context.Background())

	if a.IsAuthenticated() {
		t.Fatalf("expected guest, got authenticated")
	}
	if a.Current().Role != domain.RoleGuest {
		t.Fatalf("expected guest role, got %s", a.Current().Role)
	}
}

func TestAccessControl_Initialize_ValidCredential(t *testing.T) {
	store := newStubLocalStore()
	store.values["sess-1/"+ports.KeyCredential] = mintToken(t, "u1", "customer", []string{"orders.view.own"}, time.Hour)

	a := newAccess(store, &stubAuthClient{})
	a.Initialize(context.Background())

	if !a.IsAuthenticated() {
		t.Fatalf("expected authenticated")
	}
	id := a.Current()
	if id.UserID != "u1" || id.Role != domain.RoleCustomer {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if !id.Permissions.Contains("orders.view.own") {
		t.Fatalf("expected decoded permission set, got %v", id.Permissions.Tokens())
	}
}

func TestAccessControl_Initialize_ExpiredCredentialPurged(t *testing.T) {
	store := newStubLocalStore()
	store.values["sess-1/"+ports.KeyCredential] = mintToken(t, "u1", "customer", nil, -time.Minute)
	store.values["sess-1/"+ports.KeyLoggedIn] = "true"

	a := newAccess(store, &stubAuthClient{})
	a.Initialize(context.Background())

	if a.IsAuthenticated() {
		t.Fatalf("expected guest after expired credential")
	}
	if _, ok := store.values["sess-1/"+ports.KeyCredential]; ok {
		t.Fatalf("expired credential must be purged, not ignored")
	}
	if _, ok := store.values["sess-1/"+ports.KeyLoggedIn]; ok {
		t.Fatalf("logged-in flag must be purged with the credential")
	}

	// A second Initialize behaves as though no credential was ever present.
	b := newAccess(store, &stubAuthClient{})
	b.Initialize(context.Background())
	if b.IsAuthenticated() {
		t.Fatalf("expected guest on re-initialize")
	}
}

func TestAccessControl_Initialize_MalformedCredentialPurged(t *testing.T) {
	store := newStubLocalStore()
	store.values["sess-1/"+ports.KeyCredential] = "not-a-token"

	a := newAccess(store, &stubAuthClient{})
	a.Initialize(context.Background())

	if a.IsAuthenticated() {
		t.Fatalf("expected guest after malformed credential")
	}
	if _, ok := store.values["sess-1/"+ports.KeyCredential]; ok {
		t.Fatalf("malformed credential must be purged")
	}
}

func TestAccessControl_Initialize_Idempotent(t *testing.T) {
	store := newStubLocalStore()
	a := newAccess(store, &stubAuthClient{})
	a.Initialize(context.Background())

	// Writing a credential after the first Initialize must not change the
	// already-derived identity.
	store.values["sess-1/"+ports.KeyCredential] = mintToken(t, "u1", "customer", nil, time.Hour)
	a.Initialize(context.Background())

	if a.IsAuthenticated() {
		t.Fatalf("second Initialize must be a no-op")
	}
}

// ---------------------------------------------------------------------------
// Login / Logout
// ---------------------------------------------------------------------------

func TestAccessControl_Login_Success(t *testing.T) {
	store := newStubLocalStore()
	token := mintToken(t, "u7", "seller", []string{"products.edit.own"}, time.Hour)
	a := newAccess(store, &stubAuthClient{token: token})
	a.Initialize(context.Background())

	var gotOld, gotNew domain.Identity
	a.OnIdentityChange(func(_ context.Context, old, new domain.Identity) {
		gotOld, gotNew = old, new
	})

	id, err := a.Login(context.Background(), ports.Credentials{Email: "u7@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if id.UserID != "u7" || id.Role != domain.RoleSeller {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if store.values["sess-1/"+ports.KeyCredential] != token {
		t.Fatalf("credential not persisted")
	}
	if store.values["sess-1/"+ports.KeyLoggedIn] != "true" {
		t.Fatalf("logged-in flag not persisted")
	}
	if gotOld.Authenticated() || !gotNew.Authenticated() {
		t.Fatalf("listener saw wrong transition: old=%+v new=%+v", gotOld, gotNew)
	}
}

func TestAccessControl_Login_FailureLeavesStateUnchanged(t *testing.T) {
	store := newStubLocalStore()
	a := newAccess(store, &stubAuthClient{loginErr: domain.ErrInvalidCredentials})
	a.Initialize(context.Background())

	_, err := a.Login(context.Background(), ports.Credentials{Email: "x", Password: "y"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if a.IsAuthenticated() {
		t.Fatalf("state must be unchanged after failed login")
	}
	if _, ok := store.values["sess-1/"+ports.KeyCredential]; ok {
		t.Fatalf("no credential must be persisted after failed login")
	}
}

func TestAccessControl_Login_PersistFailureDoesNotTransition(t *testing.T) {
	store := newStubLocalStore()
	store.setErr = fmt.Errorf("redis down")
	a := newAccess(store, &stubAuthClient{token: mintToken(t, "u1", "customer", nil, time.Hour)})
	a.Initialize(context.Background())

	if _, err := a.Login(context.Background(), ports.Credentials{}); err == nil {
		t.Fatalf("expected persist error")
	}
	if a.IsAuthenticated() {
		t.Fatalf("identity must not transition when the credential cannot be persisted")
	}
}

func TestAccessControl_Logout_SynchronousReset(t *testing.T) {
	store := newStubLocalStore()
	a := newAccess(store, &stubAuthClient{token: mintToken(t, "u1", "customer", nil, time.Hour)})
	a.Initialize(context.Background())
	if _, err := a.Login(context.Background(), ports.Credentials{}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	a.Logout(context.Background())

	if a.IsAuthenticated() {
		t.Fatalf("expected guest immediately after Logout returns")
	}
	if _, ok := store.values["sess-1/"+ports.KeyCredential]; ok {
		t.Fatalf("credential must be erased on logout")
	}
}

// ---------------------------------------------------------------------------
// Predicates
// ---------------------------------------------------------------------------

func loggedInAccess(t *testing.T, role string, permissions []string) *AccessControl {
	t.Helper()
	a := newAccess(newStubLocalStore(), &stubAuthClient{token: mintToken(t, "u1", role, permissions, time.Hour)})
	a.Initialize(context.Background())
	if _, err := a.Login(context.Background(), ports.Credentials{}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return a
}

func TestAccessControl_HasRole(t *testing.T) {
	a := loggedInAccess(t, "seller", nil)

	if !a.HasRole(domain.RoleSeller) {
		t.Fatalf("expected seller role match")
	}
	if !a.HasRole(domain.RoleAdmin, domain.RoleSeller) {
		t.Fatalf("expected OR semantics over role list")
	}
	if a.HasRole(domain.RoleAdmin, domain.RoleFinance) {
		t.Fatalf("expected false for roles not held")
	}
}

func TestAccessControl_HasRole_Guest(t *testing.T) {
	a := newAccess(newStubLocalStore(), &stubAuthClient{})
	a.Initialize(context.Background())

	if a.HasRole(domain.RoleCustomer) {
		t.Fatalf("guest must not match customer")
	}
	if !a.HasRole(domain.RoleCustomer, domain.RoleGuest) {
		t.Fatalf("guest must match when RoleGuest is explicitly listed")
	}
}

func TestAccessControl_HasPermission_AdminShortCircuit(t *testing.T) {
	a := loggedInAccess(t, "admin", nil)

	for _, p := range []domain.Permission{"orders.view", "finance.reports.all", "nonsense.gibberish"} {
		if !a.HasPermission(p) {
			t.Fatalf("admin must hold any permission, %q denied", p)
		}
	}
}

func TestAccessControl_HasPermission_Membership(t *testing.T) {
	a := loggedInAccess(t, "finance", []string{"finance.view", "finance.reports.all"})

	if !a.HasPermission("finance.view") {
		t.Fatalf("expected held permission to pass")
	}
	if !a.HasPermission("orders.cancel", "finance.reports.all") {
		t.Fatalf("expected OR semantics over permission list")
	}
	if a.HasPermission("orders.cancel", "users.ban") {
		t.Fatalf("expected false when no listed permission is held")
	}
}

func TestAccessControl_CanAccess_ScopedThenUnscoped(t *testing.T) {
	scoped := loggedInAccess(t, "support", []string{"orders.view.own"})
	if !scoped.CanAccess("orders", "view") {
		t.Fatalf("scoped token must satisfy CanAccess")
	}

	unscoped := loggedInAccess(t, "support", []string{"orders.view"})
	if !unscoped.CanAccess("orders", "view") {
		t.Fatalf("unscoped token must satisfy CanAccess")
	}

	if scoped.CanAccessScoped("orders", "view", domain.ScopeAll) {
		t.Fatalf("own-scoped token must not satisfy the all scope")
	}
	if scoped.CanAccess("orders", "cancel") {
		t.Fatalf("unrelated action must be denied")
	}
}

func TestAccessControl_CredentialLapseDegradesToGuest(t *testing.T) {
	a := loggedInAccess(t, "customer", []string{"orders.view.own"})
	if !a.IsAuthenticated() || !a.HasRole(domain.RoleCustomer) {
		t.Fatalf("expected an authenticated customer before expiry")
	}

	// Move the clock past the credential's expiry without re-initializing.
	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if a.IsAuthenticated() {
		t.Fatalf("expired credential must read as guest")
	}
	if a.HasRole(domain.RoleCustomer) {
		t.Fatalf("expired credential must lose its role")
	}
	if a.HasPermission(domain.NewScopedPermission("orders", "view", domain.ScopeOwn)) {
		t.Fatalf("expired credential must lose its permissions")
	}
	if got := a.Current().Role; got != domain.RoleGuest {
		t.Fatalf("Current().Role = %q, want guest", got)
	}
}
