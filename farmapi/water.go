package farmapi

import (
	"context"
	"net/http"
)

// ListWaterReadings returns water-quality measurements for a pond,
// newest first.
func (c *Client) ListWaterReadings(ctx context.Context, pondID string) ([]WaterReading, error) {
	var readings []WaterReading
	err := c.getJSON(ctx, "/api/water-quality", map[string]string{"pond_id": pondID}, nil, &readings)
	return readings, err
}

// CreateWaterReading records a measurement.
func (c *Client) CreateWaterReading(ctx context.Context, r WaterReading) (*WaterReading, error) {
	var created WaterReading
	patterns := []string{"/api/water-quality*", "/api/dashboard*"}
	if err := c.mutate(ctx, http.MethodPost, "/api/water-quality", r, patterns, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
