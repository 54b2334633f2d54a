package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesi0621/storefront-gateway/internal/api/metrics"
	"github.com/mesi0621/storefront-gateway/internal/core/domain"
)

// DenyMode selects what a guard does when it refuses a request. Exactly one
// of the three behaviors occurs on every denial; protected content is never
// served.
type DenyMode int

const (
	// DenyMessage responds 403 with a JSON error envelope.
	DenyMessage DenyMode = iota
	// DenyRedirect responds 302 to the configured fallback path. Requests
	// denied for lack of authentication fall back to the login path.
	DenyRedirect
	// DenyNothing responds 404, hiding that the route exists.
	DenyNothing
)

// GuardConfig describes one route's access requirements. Unset checks are
// vacuously satisfied; a zero GuardConfig allows everything.
type GuardConfig struct {
	RequireAuth bool
	Roles       []domain.Role
	Permissions []domain.Permission

	Deny DenyMode
	// FallbackPath is the redirect target for DenyRedirect. Defaults to /login.
	FallbackPath string
}

// Guard enforces the route's requirements against the session identity
// resolved by the Session middleware. Checks run in order: authentication,
// then role, then permission; the first failure denies.
//
// A role or permission check implies authentication: guards never grant a
// guest a role-gated route, except when RoleGuest is explicitly listed.
func Guard(cfg GuardConfig) echo.MiddlewareFunc {
	fallback := cfg.FallbackPath
	if fallback == "" {
		fallback = "/login"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := FromContext(c)
			if s == nil {
				return deny(c, cfg, fallback, "no_session")
			}
			access := s.Access

			needsAuth := cfg.RequireAuth || len(cfg.Roles) > 0 || len(cfg.Permissions) > 0
			guestAllowed := containsRole(cfg.Roles, domain.RoleGuest)
			if needsAuth && !guestAllowed && !access.IsAuthenticated() {
				return deny(c, cfg, fallback, "unauthenticated")
			}
			if len(cfg.Roles) > 0 && !access.HasRole(cfg.Roles...) {
				return deny(c, cfg, fallback, "role_mismatch")
			}
			if len(cfg.Permissions) > 0 && !access.HasPermission(cfg.Permissions...) {
				return deny(c, cfg, fallback, "permission_missing")
			}

			return next(c)
		}
	}
}

func deny(c echo.Context, cfg GuardConfig, fallback, reason string) error {
	metrics.GuardDenialsTotal.WithLabelValues(reason).Inc()

	switch cfg.Deny {
	case DenyRedirect:
		return c.Redirect(http.StatusFound, fallback)
	case DenyNothing:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
}

func containsRole(roles []domain.Role, r domain.Role) bool {
	for _, role := range roles {
		if role == r {
			return true
		}
	}
	return false
}
