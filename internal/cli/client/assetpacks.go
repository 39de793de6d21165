package client

import (
	"context"
	"errors"
	"net/http"
)

// ListAssetPacks returns one page of asset packs
func (c *Client) ListAssetPacks(ctx context.Context, filter AssetPackFilter, page PageRequest) (*Page[AssetPack], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	query := filter.Values()
	page.apply(query)

	var result Page[AssetPack]
	if err := c.send(ctx, request{method: http.MethodGet, path: "/asset-packs", query: query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAssetPack fetches a single asset pack with its sprites
func (c *Client) GetAssetPack(ctx context.Context, packID string) (*AssetPack, error) {
	id, err := checkID(packID)
	if err != nil {
		return nil, err
	}
	var pack AssetPack
	if err := c.send(ctx, request{method: http.MethodGet, path: "/asset-packs/" + id}, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// CreateAssetPack creates an asset pack; the cover image is required
func (c *Client) CreateAssetPack(ctx context.Context, in AssetPackRequest, image *Upload) (*AssetPack, error) {
	if image == nil {
		return nil, errors.New("an image is required to create an asset pack")
	}
	req, err := multipartRequest(http.MethodPost, "/asset-packs", in, "image", image)
	if err != nil {
		return nil, err
	}
	var pack AssetPack
	if err := c.send(ctx, req, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// UpdateAssetPack replaces an asset pack's fields and optionally its image
func (c *Client) UpdateAssetPack(ctx context.Context, packID string, in AssetPackRequest, image *Upload) (*AssetPack, error) {
	id, err := checkID(packID)
	if err != nil {
		return nil, err
	}
	req, err := multipartRequest(http.MethodPut, "/asset-packs/"+id, in, "image", image)
	if err != nil {
		return nil, err
	}
	var pack AssetPack
	if err := c.send(ctx, req, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// DeleteAssetPack deletes an asset pack
func (c *Client) DeleteAssetPack(ctx context.Context, packID string) error {
	id, err := checkID(packID)
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodDelete, path: "/asset-packs/" + id}, nil)
}
