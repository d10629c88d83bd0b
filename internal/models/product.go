package models

// Product represents a product entity as served by the upstream inventory API.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	UnitPrice   float64 `json:"unit_price"`
}
