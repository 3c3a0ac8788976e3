package farmapi

import (
	"context"
	"net/http"
	"time"
)

// ListFeedLogs returns feeding events for a pond, optionally bounded by
// a time range. Zero times mean unbounded.
func (c *Client) ListFeedLogs(ctx context.Context, pondID string, from, to time.Time) ([]FeedLog, error) {
	params := map[string]string{"pond_id": pondID}
	if !from.IsZero() {
		params["from"] = from.Format(time.RFC3339)
	}
	if !to.IsZero() {
		params["to"] = to.Format(time.RFC3339)
	}

	var logs []FeedLog
	err := c.getJSON(ctx, "/api/feed-logs", params, nil, &logs)
	return logs, err
}

// CreateFeedLog records a feeding event. Feed totals feed into the
// dashboard, so its entries are invalidated too.
func (c *Client) CreateFeedLog(ctx context.Context, log FeedLog) (*FeedLog, error) {
	var created FeedLog
	patterns := []string{"/api/feed-logs*", "/api/dashboard*"}
	if err := c.mutate(ctx, http.MethodPost, "/api/feed-logs", log, patterns, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
