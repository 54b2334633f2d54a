package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type identityResponse struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func toIdentityResponse(id domain.Identity) identityResponse {
	return identityResponse{
		UserID:      id.UserID,
		Email:       id.Email,
		Username:    id.Username,
		Role:        string(id.Role),
		Permissions: id.Permissions.Tokens(),
	}
}

// Login authenticates the session against the auth collaborator. On success
// the session transitions to authenticated, which also triggers the one-time
// guest cart merge.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  identityResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
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

	identity, err := s.Access.Login(c.Request().Context(), ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toIdentityResponse(identity))
}

// Signup creates an account and logs the session in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "New account details"
// @Success      201   {object}  identityResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
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

	identity, err := s.Access.Signup(c.Request().Context(), ports.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toIdentityResponse(identity))
}

// Logout erases the credential and resets the session to guest. Completes
// synchronously; the client may navigate immediately after the response.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	s.Access.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Me reports the current identity; guests get the guest identity, not 401.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200  {object}  identityResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIdentityResponse(s.Access.Current()))
}
