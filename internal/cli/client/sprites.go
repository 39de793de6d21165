package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

func (c *Client) listSprites(ctx context.Context, path string, filter SpriteFilter, page PageRequest) (*Page[SpriteSummary], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	query := filter.Values()
	page.apply(query)

	var result Page[SpriteSummary]
	if err := c.send(ctx, request{method: http.MethodGet, path: path, query: query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSprites returns one page of the public sprite catalogue
func (c *Client) ListSprites(ctx context.Context, filter SpriteFilter, page PageRequest) (*Page[SpriteSummary], error) {
	return c.listSprites(ctx, "/sprites", filter, page)
}

// ListMySprites returns one page of the signed-in user's sprites
func (c *Client) ListMySprites(ctx context.Context, filter SpriteFilter, page PageRequest) (*Page[SpriteSummary], error) {
	return c.listSprites(ctx, "/sprites/me", filter, page)
}

// ListUserSprites returns one page of another user's sprites (admin only)
func (c *Client) ListUserSprites(ctx context.Context, userID string, filter SpriteFilter, page PageRequest) (*Page[SpriteSummary], error) {
	id, err := checkID(userID)
	if err != nil {
		return nil, err
	}
	return c.listSprites(ctx, "/sprites/user/"+id, filter, page)
}

// ListTrash returns one page of soft-deleted sprites
func (c *Client) ListTrash(ctx context.Context, page PageRequest) (*Page[SpriteSummary], error) {
	if page.Size <= 0 {
		page.Size = TrashPageSize
	}
	query := url.Values{}
	page.apply(query)

	var result Page[SpriteSummary]
	if err := c.send(ctx, request{method: http.MethodGet, path: "/sprites/trash", query: query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSprite fetches a single sprite
func (c *Client) GetSprite(ctx context.Context, spriteID string) (*Sprite, error) {
	id, err := checkID(spriteID)
	if err != nil {
		return nil, err
	}
	var sprite Sprite
	if err := c.send(ctx, request{method: http.MethodGet, path: "/sprites/" + id}, &sprite); err != nil {
		return nil, err
	}
	return &sprite, nil
}

// CreateSprite uploads a new sprite; the image is required
func (c *Client) CreateSprite(ctx context.Context, in SpriteRequest, image *Upload) (*Sprite, error) {
	if image == nil {
		return nil, errors.New("an image is required to create a sprite")
	}
	req, err := multipartRequest(http.MethodPost, "/sprites", in, "image", image)
	if err != nil {
		return nil, err
	}
	var sprite Sprite
	if err := c.send(ctx, req, &sprite); err != nil {
		return nil, err
	}
	return &sprite, nil
}

// UpdateSprite replaces a sprite's fields and optionally its image
func (c *Client) UpdateSprite(ctx context.Context, spriteID string, in SpriteRequest, image *Upload) (*Sprite, error) {
	id, err := checkID(spriteID)
	if err != nil {
		return nil, err
	}
	req, err := multipartRequest(http.MethodPut, "/sprites/"+id, in, "image", image)
	if err != nil {
		return nil, err
	}
	var sprite Sprite
	if err := c.send(ctx, req, &sprite); err != nil {
		return nil, err
	}
	return &sprite, nil
}

// DeleteSprite moves a sprite to the trash
func (c *Client) DeleteSprite(ctx context.Context, spriteID string) error {
	id, err := checkID(spriteID)
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodDelete, path: "/sprites/" + id}, nil)
}

// RestoreSprite brings a sprite back from the trash
func (c *Client) RestoreSprite(ctx context.Context, spriteID string) (*Sprite, error) {
	id, err := checkID(spriteID)
	if err != nil {
		return nil, err
	}
	var sprite Sprite
	if err := c.send(ctx, request{method: http.MethodPost, path: "/sprites/" + id + "/restore"}, &sprite); err != nil {
		return nil, err
	}
	return &sprite, nil
}

// PurgeSprite permanently deletes a sprite
func (c *Client) PurgeSprite(ctx context.Context, spriteID string) error {
	id, err := checkID(spriteID)
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodDelete, path: "/sprites/" + id + "/permanent"}, nil)
}
