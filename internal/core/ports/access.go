package ports

import (
	"context"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
)

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// SignupInput carries a new-account request.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// IdentityListener observes identity transitions (guest→authenticated on
// login, authenticated→guest on logout). Called synchronously from the
// operation that caused the transition, with that operation's context.
type IdentityListener func(ctx context.Context, old, new domain.Identity)

// AccessControl owns the decoded identity of one session and exposes the
// predicates consumed by route guards and conditional rendering.
//
// Predicates never fail: any internal error evaluates to false or to the
// guest identity, never to a panic or an error return.
type AccessControl interface {
	// Initialize derives the identity from the stored credential. An absent,
	// malformed, or expired credential yields the guest identity; expired and
	// malformed credentials are purged from the store, not merely ignored.
	// Idempotent; runs once per session revival.
	Initialize(ctx context.Context)

	// Login delegates to the auth collaborator, persists the returned
	// credential, and transitions to authenticated. On failure the identity
	// is unchanged and the error is returned to the caller.
	Login(ctx context.Context, creds Credentials) (domain.Identity, error)

	// Signup creates an account through the auth collaborator and then
	// behaves exactly like Login.
	Signup(ctx context.Context, input SignupInput) (domain.Identity, error)

	// Logout erases the stored credential and resets the identity to guest
	// before returning; callers may navigate immediately after.
	Logout(ctx context.Context)

	Current() domain.Identity
	IsAuthenticated() bool

	// HasRole reports whether the current role is among the given roles (OR
	// semantics). False for guests unless RoleGuest is explicitly listed.
	HasRole(roles ...domain.Role) bool

	// HasPermission reports whether the identity holds any of the given
	// permissions. The admin role short-circuits to true for any token.
	HasPermission(perms ...domain.Permission) bool

	// CanAccess checks resource.action.own, then resource.action.
	CanAccess(resource, action string) bool

	// CanAccessScoped checks resource.action.<scope>, then resource.action.
	CanAccessScoped(resource, action string, scope domain.PermissionScope) bool

	// OnIdentityChange registers a listener for login/logout transitions.
	OnIdentityChange(fn IdentityListener)
}
