package models

// SummaryRow is one bucket of the server-side movement aggregation
// (per movement type, over a day or a trailing week). The gateway treats it
// as an opaque value object and exposes it unchanged.
type SummaryRow struct {
	MovementType  MovementType `json:"movement_type"`
	TotalQuantity int          `json:"total_quantity"`
	Count         int          `json:"count"`
}
