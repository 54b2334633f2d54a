package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

const defaultTheme = "light"

// PreferencesHandler stores per-session UI preferences in the session's
// durable key/value store, so they survive process restarts and session
// eviction the same way the guest cart does.
type PreferencesHandler struct {
	store ports.LocalStore
}

func NewPreferencesHandler(store ports.LocalStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

type themeResponse struct {
	Theme string `json:"theme"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// GetTheme returns the stored theme, defaulting to light.
//
// @Summary      Get theme preference
// @Tags         preferences
// @Produce      json
// @Success      200  {object}  themeResponse
// @Router       /preferences/theme [get]
func (h *PreferencesHandler) GetTheme(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	theme, err := h.store.Get(c.Request().Context(), s.ID, ports.KeyTheme)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			return err
		}
		theme = defaultTheme
	}
	return c.JSON(http.StatusOK, themeResponse{Theme: theme})
}

// PutTheme stores the theme. Last writer wins across tabs.
//
// @Summary      Set theme preference
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        body  body      themeRequest  true  "Theme"
// @Success      200   {object}  themeResponse
// @Failure      422   {object}  map[string]string
// @Router       /preferences/theme [put]
func (h *PreferencesHandler) PutTheme(c echo.Context) error {
	var req themeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	if err := h.store.Set(c.Request().Context(), s.ID, ports.KeyTheme, req.Theme); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, themeResponse{Theme: req.Theme})
}
