package farmapi

import (
	"context"
	"net/http"
	"path"
)

// pondPatterns covers every cached pond read, list or single.
var pondPatterns = []string{"/api/ponds*", "/api/dashboard*"}

// ListPonds returns all ponds.
func (c *Client) ListPonds(ctx context.Context) ([]Pond, error) {
	var ponds []Pond
	err := c.getJSON(ctx, "/api/ponds", nil, nil, &ponds)
	return ponds, err
}

// GetPond returns one pond by id.
func (c *Client) GetPond(ctx context.Context, id string) (*Pond, error) {
	var p Pond
	if err := c.getJSON(ctx, path.Join("/api/ponds", id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePond registers a new pond and returns it with its assigned id.
func (c *Client) CreatePond(ctx context.Context, pond Pond) (*Pond, error) {
	var created Pond
	if err := c.mutate(ctx, http.MethodPost, "/api/ponds", pond, pondPatterns, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePond replaces a pond's attributes.
func (c *Client) UpdatePond(ctx context.Context, id string, pond Pond) (*Pond, error) {
	var updated Pond
	if err := c.mutate(ctx, http.MethodPut, path.Join("/api/ponds", id), pond, pondPatterns, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePond removes a pond.
func (c *Client) DeletePond(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, path.Join("/api/ponds", id), nil, pondPatterns, nil)
}
