package farmapi

import (
	"context"
	"net/http"
)

// ListGrowthSamples returns weight samplings for a pond in
// chronological order.
func (c *Client) ListGrowthSamples(ctx context.Context, pondID string) ([]GrowthSample, error) {
	var samples []GrowthSample
	err := c.getJSON(ctx, "/api/growth-samples", map[string]string{"pond_id": pondID}, nil, &samples)
	return samples, err
}

// CreateGrowthSample records a sampling. Biomass estimates on the
// dashboard derive from samples, so those entries go stale too.
func (c *Client) CreateGrowthSample(ctx context.Context, s GrowthSample) (*GrowthSample, error) {
	var created GrowthSample
	patterns := []string{"/api/growth-samples*", "/api/dashboard*"}
	if err := c.mutate(ctx, http.MethodPost, "/api/growth-samples", s, patterns, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
