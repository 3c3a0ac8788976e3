package farmapi

import "time"

// Pond is a grow-out pond on the farm.
type Pond struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	AreaHectares    float64    `json:"area_hectares"`
	Status          string     `json:"status"` // active, fallow, harvested
	StockedAt       *time.Time `json:"stocked_at,omitempty"`
	PostlarvaeCount int        `json:"postlarvae_count"`
}

// FeedLog records one feeding event for a pond.
type FeedLog struct {
	ID       string    `json:"id"`
	PondID   string    `json:"pond_id"`
	FeedType string    `json:"feed_type"`
	AmountKG float64   `json:"amount_kg"`
	FedAt    time.Time `json:"fed_at"`
	Notes    string    `json:"notes,omitempty"`
}

// WaterReading is one water-quality measurement for a pond.
type WaterReading struct {
	ID              string    `json:"id"`
	PondID          string    `json:"pond_id"`
	TempC           float64   `json:"temp_c"`
	PH              float64   `json:"ph"`
	DissolvedOxygen float64   `json:"dissolved_oxygen"`
	SalinityPPT     float64   `json:"salinity_ppt"`
	AmmoniaPPM      float64   `json:"ammonia_ppm"`
	MeasuredAt      time.Time `json:"measured_at"`
}

// GrowthSample is a periodic weight sampling of a pond's population.
type GrowthSample struct {
	ID          string    `json:"id"`
	PondID      string    `json:"pond_id"`
	SampledAt   time.Time `json:"sampled_at"`
	AvgWeightG  float64   `json:"avg_weight_g"`
	SampleSize  int       `json:"sample_size"`
	SurvivalPct float64   `json:"survival_pct"`
}

// InventoryItem is a stocked supply (feed, probiotics, fuel, ...).
type InventoryItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
}

// InventoryAdjustment changes an item's quantity by a signed delta.
type InventoryAdjustment struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason,omitempty"`
}

// Expense is a farm expense entry.
type Expense struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	IncurredAt time.Time `json:"incurred_at"`
	Notes      string    `json:"notes,omitempty"`
}

// DashboardSummary aggregates farm-wide indicators for the front page.
type DashboardSummary struct {
	ActivePonds    int     `json:"active_ponds"`
	TotalBiomassKG float64 `json:"total_biomass_kg"`
	FeedWeekKG     float64 `json:"feed_week_kg"`
	ExpensesMonth  float64 `json:"expenses_month"`
	Alerts         []Alert `json:"alerts"`
}

// Alert flags a pond condition that needs attention.
type Alert struct {
	PondID   string `json:"pond_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}
