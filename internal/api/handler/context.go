package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesi0621/storefront-gateway/internal/api/middleware"
	"github.com/mesi0621/storefront-gateway/internal/session"
)

// ctxSession extracts the session resolved by the Session middleware and
// fast-fails when it is absent; its presence proves the middleware ran, so
// handlers can use Access and Cart without nil checks.
func ctxSession(c echo.Context) (*session.Session, error) {
	s := middleware.FromContext(c)
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session not resolved")
	}
	return s, nil
}
