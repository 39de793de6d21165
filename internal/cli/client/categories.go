package client

import (
	"context"
	"net/http"
)

// ListCategories returns every category; the endpoint is not paginated
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.send(ctx, request{method: http.MethodGet, path: "/categories"}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory fetches a single category
func (c *Client) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	id, err := checkID(categoryID)
	if err != nil {
		return nil, err
	}
	var category Category
	if err := c.send(ctx, request{method: http.MethodGet, path: "/categories/" + id}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a category (admin only)
func (c *Client) CreateCategory(ctx context.Context, in CategoryRequest) (*Category, error) {
	req, err := jsonRequest(http.MethodPost, "/categories", in)
	if err != nil {
		return nil, err
	}
	var category Category
	if err := c.send(ctx, req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory renames or re-describes a category (admin only)
func (c *Client) UpdateCategory(ctx context.Context, categoryID string, in CategoryRequest) (*Category, error) {
	id, err := checkID(categoryID)
	if err != nil {
		return nil, err
	}
	req, err := jsonRequest(http.MethodPut, "/categories/"+id, in)
	if err != nil {
		return nil, err
	}
	var category Category
	if err := c.send(ctx, req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory deletes a category (admin only)
func (c *Client) DeleteCategory(ctx context.Context, categoryID string) error {
	id, err := checkID(categoryID)
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodDelete, path: "/categories/" + id}, nil)
}
