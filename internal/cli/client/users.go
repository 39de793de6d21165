package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ListUsers returns one page of accounts matching keyword (admin only)
func (c *Client) ListUsers(ctx context.Context, keyword string, page PageRequest) (*Page[User], error) {
	query := url.Values{}
	setIfNotEmpty(query, "keyword", strings.TrimSpace(keyword))
	page.apply(query)

	var result Page[User]
	if err := c.send(ctx, request{method: http.MethodGet, path: "/users", query: query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProfile changes the signed-in user's username and full name
func (c *Client) UpdateProfile(ctx context.Context, in ProfileRequest) (*User, error) {
	req, err := jsonRequest(http.MethodPut, "/users/me", in)
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.send(ctx, req, &user); err != nil {
		return nil, err
	}
	if err := c.session.Save(user); err != nil {
		return nil, fmt.Errorf("failed to cache session: %w", err)
	}
	return &user, nil
}

// UpdateAvatar uploads a new avatar image for the signed-in user
func (c *Client) UpdateAvatar(ctx context.Context, image *Upload) (*User, error) {
	if image == nil {
		return nil, errors.New("an image is required")
	}
	req, err := multipartRequest(http.MethodPatch, "/users/me/avatar", nil, "file", image)
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.send(ctx, req, &user); err != nil {
		return nil, err
	}
	if err := c.session.Save(user); err != nil {
		return nil, fmt.Errorf("failed to cache session: %w", err)
	}
	return &user, nil
}
