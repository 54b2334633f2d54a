package upstream

import (
	"context"
	"net/http"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

// AuthClient implements ports.AuthClient against the storefront auth service.
type AuthClient struct {
	client *Client
}

var _ ports.AuthClient = (*AuthClient)(nil)

func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Errors  string `json:"errors,omitempty"`
}

func (c *AuthClient) Login(ctx context.Context, creds ports.Credentials) (string, error) {
	var resp authResponse
	err := c.client.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: creds.Email, Password: creds.Password}, &resp)
	if err != nil {
		switch statusOf(err) {
		case http.StatusUnauthorized, http.StatusBadRequest:
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if !resp.Success || resp.Token == "" {
		return "", domain.ErrInvalidCredentials
	}
	return resp.Token, nil
}

func (c *AuthClient) Signup(ctx context.Context, input ports.SignupInput) (string, error) {
	var resp authResponse
	req := signupRequest{Username: input.Username, Email: input.Email, Password: input.Password}
	err := c.client.do(ctx, http.MethodPost, "/auth/signup", req, &resp)
	if err != nil {
		switch statusOf(err) {
		case http.StatusBadRequest, http.StatusConflict:
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if !resp.Success || resp.Token == "" {
		return "", domain.ErrInvalidCredentials
	}
	return resp.Token, nil
}
