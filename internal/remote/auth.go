package remote

import (
	"context"
	"net/http"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// Login exchanges email and password for an access token.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.Token, error) {
	var tok models.Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Signup creates a user and returns its access token.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.Token, error) {
	var tok models.Token
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me fetches the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes profile fields of the current user.
func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, "/auth/profile", update, nil)
}

// ChangePassword changes the current user's password.
func (c *Client) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/auth/password", change, nil)
}
