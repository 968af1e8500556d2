package api

import (
	"context"
	"net/http"
)

// RegisterRequest creates the first admin account of a new organization.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	OrganizationName string `json:"organizationName"`
	Country          string `json:"country,omitempty"`
}

// Login exchanges credentials for a user record and token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.Request(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new organization admin account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Request(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshSession exchanges a refresh token for a rotated token pair.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var out AuthResponse
	if err := c.Request(ctx, http.MethodPost, "/auth/refresh", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the identity behind the current access token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.Request(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPasswordReset asks the backend to mail a reset token.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.Request(ctx, http.MethodPost, "/auth/password-reset", map[string]string{"email": email}, nil)
}

// ConfirmPasswordReset sets a new password using a mailed reset token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "password": newPassword}
	return c.Request(ctx, http.MethodPost, "/auth/password-reset/confirm", body, nil)
}
