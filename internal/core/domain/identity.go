package domain

import "time"

// Role classifies an identity into one coarse-grained access tier.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleCustomer Role = "customer"
	RoleDelivery Role = "delivery"
	RoleSupport  Role = "support"
	RoleFinance  Role = "finance"
	RoleGuest    Role = "guest"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:    {},
	RoleSeller:   {},
	RoleCustomer: {},
	RoleDelivery: {},
	RoleSupport:  {},
	RoleFinance:  {},
	RoleGuest:    {},
}

// ParseRole validates a decoded role claim against the closed role set.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := knownRoles[r]
	return r, ok
}

// Identity is the decoded view of a bearer credential. The zero value is not
// meaningful; use Guest for the unauthenticated identity.
type Identity struct {
	UserID      string        `json:"user_id,omitempty"`
	Email       string        `json:"email,omitempty"`
	Username    string        `json:"username,omitempty"`
	Role        Role          `json:"role"`
	Permissions PermissionSet `json:"permissions,omitempty"`
	ExpiresAt   time.Time     `json:"expires_at,omitempty"`
}

// Guest is the identity assigned to every session without a valid credential.
var Guest = Identity{Role: RoleGuest}

// Authenticated reports whether the identity belongs to a signed-in user.
func (i Identity) Authenticated() bool {
	return i.UserID != "" && i.Role != RoleGuest
}

// Expired reports whether the credential backing this identity has lapsed.
// Expiry is a hard boundary against local time; no clock-skew compensation.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
