package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// SendRegistrationOTP emails a one-time code for sign-up
func (c *Client) SendRegistrationOTP(ctx context.Context, email string) error {
	req, err := jsonRequest(http.MethodPost, "/auth/register/send-otp", SendOTPRequest{Email: email})
	if err != nil {
		return err
	}
	return c.send(ctx, req, nil)
}

// SendResetPasswordOTP emails a one-time code for a password reset
func (c *Client) SendResetPasswordOTP(ctx context.Context, email string) error {
	req, err := jsonRequest(http.MethodPost, "/auth/reset-password/send-otp", SendOTPRequest{Email: email})
	if err != nil {
		return err
	}
	return c.send(ctx, req, nil)
}

// Register creates an account and signs it in
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	return c.signIn(ctx, "/auth/register", in)
}

// Login authenticates the user; the server sets the token cookies
func (c *Client) Login(ctx context.Context, in LoginRequest) (*User, error) {
	return c.signIn(ctx, "/auth/login", in)
}

// ResetPassword sets a new password and signs the user in
func (c *Client) ResetPassword(ctx context.Context, in ResetPasswordRequest) (*User, error) {
	return c.signIn(ctx, "/auth/reset-password", in)
}

func (c *Client) signIn(ctx context.Context, path string, payload any) (*User, error) {
	req, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var user *User
	if err := c.send(ctx, req, &user); err != nil {
		return nil, err
	}
	if err := c.signedIn(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout ends the session on the server. Local state is cleared even when
// the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer func() {
		c.clearCookies()
		if err := c.session.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear session cache")
		}
	}()

	return c.send(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
}

// Me fetches the signed-in user and refreshes the cache. Any failure drops
// the cached user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user *User
	err := c.send(ctx, request{method: http.MethodGet, path: "/auth/me"}, &user)
	if err == nil && user == nil {
		err = errors.New("failed to fetch user")
	}
	if err != nil {
		if clearErr := c.session.Clear(); clearErr != nil {
			c.logger.Warn().Err(clearErr).Msg("failed to clear session cache")
		}
		return nil, err
	}

	if err := c.session.Save(*user); err != nil {
		return nil, fmt.Errorf("failed to cache session: %w", err)
	}
	return user, nil
}

// CachedUser returns the user from the local session cache without a request
func (c *Client) CachedUser() (*User, error) {
	return c.session.Current()
}
