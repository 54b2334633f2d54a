package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

// AccessControl implements ports.AccessControl for one session. It decodes
// the persisted bearer credential into an identity and answers role and
// permission predicates for guards.
type AccessControl struct {
	sessionID string
	store     ports.LocalStore
	auth      ports.AuthClient
	jwtSecret string
	log       zerolog.Logger
	now       func() time.Time

	mu          sync.RWMutex
	identity    domain.Identity
	initialized bool
	listeners   []ports.IdentityListener
}

var _ ports.AccessControl = (*AccessControl)(nil)

func NewAccessControl(sessionID string, store ports.LocalStore, auth ports.AuthClient, jwtSecret string, log zerolog.Logger) *AccessControl {
	return &AccessControl{
		sessionID: sessionID,
		store:     store,
		auth:      auth,
		jwtSecret: jwtSecret,
		log:       log.With().Str("component", "access").Str("session_id", sessionID).Logger(),
		now:       time.Now,
		identity:  domain.Guest,
	}
}

// Initialize derives the identity from the stored credential. Any failure —
// missing key, storage error, malformed or expired token — lands in the guest
// identity; expired and malformed credentials are purged so later calls see a
// clean store.
func (a *AccessControl) Initialize(ctx context.Context) {
	a.mu.Lock()
	if a.initialized {
		a.mu.Unlock()
		return
	}
	a.initialized = true
	a.mu.Unlock()

	token, err := a.store.Get(ctx, a.sessionID, ports.KeyCredential)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			a.log.Warn().Err(err).Msg("credential read failed, starting as guest")
		}
		return
	}

	identity, err := a.decodeIdentity(token)
	if err != nil {
		a.log.Debug().Err(err).Msg("purging invalid credential")
		a.purgeCredential(ctx)
		return
	}

	a.mu.Lock()
	a.identity = identity
	a.mu.Unlock()
}

func (a *AccessControl) Login(ctx context.Context, creds ports.Credentials) (domain.Identity, error) {
	token, err := a.auth.Login(ctx, creds)
	if err != nil {
		return domain.Guest, err
	}
	return a.adoptCredential(ctx, token)
}

func (a *AccessControl) Signup(ctx context.Context, input ports.SignupInput) (domain.Identity, error) {
	token, err := a.auth.Signup(ctx, input)
	if err != nil {
		return domain.Guest, err
	}
	return a.adoptCredential(ctx, token)
}

// adoptCredential decodes, persists, and activates a freshly issued token.
// State is unchanged on any failure.
func (a *AccessControl) adoptCredential(ctx context.Context, token string) (domain.Identity, error) {
	identity, err := a.decodeIdentity(token)
	if err != nil {
		return domain.Guest, err
	}

	if err := a.store.Set(ctx, a.sessionID, ports.KeyCredential, token); err != nil {
		return domain.Guest, fmt.Errorf("persist credential: %w", err)
	}
	if err := a.store.Set(ctx, a.sessionID, ports.KeyLoggedIn, "true"); err != nil {
		a.log.Warn().Err(err).Msg("failed to persist logged-in flag")
	}

	a.mu.Lock()
	old := a.identity
	a.identity = identity
	listeners := a.listeners
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, old, identity)
	}
	return identity, nil
}

// Logout erases the stored credential and resets to guest synchronously, so
// callers can navigate right after it returns.
func (a *AccessControl) Logout(ctx context.Context) {
	a.purgeCredential(ctx)

	a.mu.Lock()
	old := a.identity
	a.identity = domain.Guest
	listeners := a.listeners
	a.mu.Unlock()

	if !old.Authenticated() {
		return
	}
	for _, fn := range listeners {
		fn(ctx, old, domain.Guest)
	}
}

func (a *AccessControl) purgeCredential(ctx context.Context) {
	if err := a.store.Delete(ctx, a.sessionID, ports.KeyCredential); err != nil {
		a.log.Warn().Err(err).Msg("failed to delete credential")
	}
	if err := a.store.Delete(ctx, a.sessionID, ports.KeyLoggedIn); err != nil {
		a.log.Warn().Err(err).Msg("failed to delete logged-in flag")
	}
}

// Current returns the active identity. Sessions outlive their credentials:
// once the credential's expiry passes, the identity degrades to guest at
// read time, so every predicate sees the lapse without waiting for the next
// Initialize.
func (a *AccessControl) Current() domain.Identity {
	a.mu.RLock()
	identity := a.identity
	a.mu.RUnlock()

	if identity.Expired(a.now()) {
		return domain.Guest
	}
	return identity
}

func (a *AccessControl) IsAuthenticated() bool {
	return a.Current().Authenticated()
}

func (a *AccessControl) HasRole(roles ...domain.Role) bool {
	current := a.Current().Role
	for _, r := range roles {
		if current == r {
			return true
		}
	}
	return false
}

func (a *AccessControl) HasPermission(perms ...domain.Permission) bool {
	identity := a.Current()
	if identity.Role == domain.RoleAdmin {
		return true
	}
	return identity.Permissions.ContainsAny(perms...)
}

func (a *AccessControl) CanAccess(resource, action string) bool {
	return a.CanAccessScoped(resource, action, domain.ScopeOwn)
}

func (a *AccessControl) CanAccessScoped(resource, action string, scope domain.PermissionScope) bool {
	return a.HasPermission(
		domain.NewScopedPermission(resource, action, scope),
		domain.NewPermission(resource, action),
	)
}

func (a *AccessControl) OnIdentityChange(fn ports.IdentityListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// decodeIdentity parses and validates an HS256 token into an identity.
// Expired tokens map to domain.ErrTokenExpired; everything else that fails —
// bad signature, wrong algorithm, missing or unknown claims — maps to
// domain.ErrTokenMalformed. Callers treat both exactly like "no credential".
func (a *AccessControl) decodeIdentity(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(a.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Guest, domain.ErrTokenExpired
		}
		return domain.Guest, domain.ErrTokenMalformed
	}
	if !parsed.Valid {
		return domain.Guest, domain.ErrTokenMalformed
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		return domain.Guest, domain.ErrTokenMalformed
	}
	rawRole, _ := claims["role"].(string)
	role, ok := domain.ParseRole(rawRole)
	if !ok || role == domain.RoleGuest {
		return domain.Guest, domain.ErrTokenMalformed
	}

	identity := domain.Identity{
		UserID:      userID,
		Role:        role,
		Permissions: domain.PermissionSet{},
	}
	identity.Email, _ = claims["email"].(string)
	identity.Username, _ = claims["username"].(string)

	if raw, ok := claims["permissions"].([]any); ok {
		tokens := make([]string, 0, len(raw))
		for _, r := range raw {
			if s, ok := r.(string); ok {
				tokens = append(tokens, s)
			}
		}
		identity.Permissions = domain.NewPermissionSet(tokens)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	return identity, nil
}
