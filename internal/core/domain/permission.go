package domain

import "strings"

// Permission is a fine-grained capability token of the form
// resource.action or resource.action.scope.
type Permission string

// PermissionUnknown is the sentinel a malformed token parses to. It is never
// a member of any permission set, so checks against it always evaluate false.
const PermissionUnknown Permission = "unknown"

// PermissionScope narrows a permission to the caller's own resources or to all.
type PermissionScope string

const (
	ScopeOwn PermissionScope = "own"
	ScopeAll PermissionScope = "all"
)

// ParsePermission validates the shape of a raw permission token. Tokens that
// are not resource.action or resource.action.{own|all} parse to
// PermissionUnknown rather than passing through arbitrary strings.
func ParsePermission(raw string) Permission {
	parts := strings.Split(raw, ".")
	switch len(parts) {
	case 2:
		// resource.action
	case 3:
		if scope := PermissionScope(parts[2]); scope != ScopeOwn && scope != ScopeAll {
			return PermissionUnknown
		}
	default:
		return PermissionUnknown
	}
	for _, p := range parts {
		if p == "" {
			return PermissionUnknown
		}
	}
	return Permission(raw)
}

// NewPermission builds an unscoped resource.action token.
func NewPermission(resource, action string) Permission {
	return Permission(resource + "." + action)
}

// NewScopedPermission builds a resource.action.scope token.
func NewScopedPermission(resource, action string, scope PermissionScope) Permission {
	return Permission(resource + "." + action + "." + string(scope))
}

// PermissionSet is the set of capabilities held by an identity.
type PermissionSet map[Permission]struct{}

// NewPermissionSet parses raw tokens into a set, discarding malformed ones.
func NewPermissionSet(raw []string) PermissionSet {
	set := make(PermissionSet, len(raw))
	for _, r := range raw {
		if p := ParsePermission(r); p != PermissionUnknown {
			set[p] = struct{}{}
		}
	}
	return set
}

// Contains reports membership of a single permission.
func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s[p]
	return ok
}

// ContainsAny reports whether the set holds at least one of the given
// permissions (OR semantics).
func (s PermissionSet) ContainsAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

// Tokens returns the set as a sorted-free string slice, for logging and JSON.
func (s PermissionSet) Tokens() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, string(p))
	}
	return out
}
