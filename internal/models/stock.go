package models

import "time"

// Classification is the derived alert state of a stock record. It is computed
// from quantity and thresholds, never stored upstream.
type Classification string

const (
	ClassificationLow    Classification = "LOW"
	ClassificationNormal Classification = "NORMAL"
	ClassificationHigh   Classification = "HIGH"
)

// StockRecord tracks one product's quantity at one location, with the
// alerting thresholds configured for it.
//
// Quantity must never go negative; MinimumThreshold must not exceed
// MaximumThreshold. Classification is derived and must be recomputed whenever
// quantity or thresholds change.
type StockRecord struct {
	ID               int            `json:"id"`
	ProductID        int            `json:"product"`
	ProductName      string         `json:"product_name,omitempty"`
	Quantity         int            `json:"quantity"`
	Location         string         `json:"location"`
	LastChecked      time.Time      `json:"last_checked"`
	MinimumThreshold int            `json:"minimum_threshold"`
	MaximumThreshold int            `json:"maximum_threshold"`
	Classification   Classification `json:"classification,omitempty"`
}
