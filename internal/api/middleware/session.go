package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mesi0621/storefront-gateway/internal/session"
)

const (
	// CookieName carries the session identifier across requests.
	CookieName = "sid"

	// SessionKey is the echo.Context key the resolved session lives under.
	SessionKey = "storefront_session"
)

// Session resolves the visitor's session from the sid cookie, minting a new
// identifier (and cookie) when none is present. Every request downstream can
// rely on a fully initialized session in the context.
func Session(manager *session.Manager, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
				id = cookie.Value
			} else {
				fresh, err := session.NewID()
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "session id generation failed")
				}
				id = fresh
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(SessionKey, manager.Resolve(c.Request().Context(), id))
			return next(c)
		}
	}
}

// FromContext returns the session placed by the Session middleware, or nil if
// the middleware did not run.
func FromContext(c echo.Context) *session.Session {
	s, _ := c.Get(SessionKey).(*session.Session)
	return s
}
