package farmapi

import (
	"context"
	"net/http"
	"path"
	"time"
)

// ListInventory returns all inventory items.
func (c *Client) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	var items []InventoryItem
	err := c.getJSON(ctx, "/api/inventory", nil, nil, &items)
	return items, err
}

// AdjustInventory applies a signed quantity delta to an item.
func (c *Client) AdjustInventory(ctx context.Context, itemID string, adj InventoryAdjustment) (*InventoryItem, error) {
	var item InventoryItem
	p := path.Join("/api/inventory", itemID, "adjust")
	if err := c.mutate(ctx, http.MethodPost, p, adj, []string{"/api/inventory*"}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListExpenses returns expenses in a time range. Zero times mean
// unbounded.
func (c *Client) ListExpenses(ctx context.Context, from, to time.Time) ([]Expense, error) {
	params := map[string]string{}
	if !from.IsZero() {
		params["from"] = from.Format(time.RFC3339)
	}
	if !to.IsZero() {
		params["to"] = to.Format(time.RFC3339)
	}

	var expenses []Expense
	err := c.getJSON(ctx, "/api/expenses", params, nil, &expenses)
	return expenses, err
}

// CreateExpense records an expense.
func (c *Client) CreateExpense(ctx context.Context, e Expense) (*Expense, error) {
	var created Expense
	patterns := []string{"/api/expenses*", "/api/dashboard*"}
	if err := c.mutate(ctx, http.MethodPost, "/api/expenses", e, patterns, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
