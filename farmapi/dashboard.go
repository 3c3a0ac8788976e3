package farmapi

import (
	"context"
	"time"
)

// GetDashboardSummary returns the farm-wide overview. The summary
// changes with almost every write, so it gets a short TTL and refreshes
// from the network when the cached copy expired.
func (c *Client) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var s DashboardSummary
	opts := &CacheOptions{TTL: 5 * time.Second, Strategy: NetworkFirst}
	if err := c.getJSON(ctx, "/api/dashboard/summary", nil, opts, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
