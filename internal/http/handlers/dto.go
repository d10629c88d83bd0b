package handlers

import "github.com/stockops/stock-console/internal/models"

type Meta struct {
	TotalCount int `json:"total_count"`
}

// Collection responses carry the reconciled state plus the operation's
// last-known error; a failed refresh never blanks previously fetched data.

type ProductsResult struct {
	Data  []models.Product `json:"data"`
	Meta  Meta             `json:"meta"`
	Error string           `json:"error,omitempty"`
}

type StocksResult struct {
	Data  []models.StockRecord `json:"data"`
	Meta  Meta                 `json:"meta"`
	Error string               `json:"error,omitempty"`
}

type MovementsResult struct {
	Data  []models.MovementEvent `json:"data"`
	Meta  Meta                   `json:"meta"`
	Error string                 `json:"error,omitempty"`
}

type SummaryResult struct {
	Data   []models.SummaryRow `json:"data"`
	Cached bool                `json:"cached"`
	Error  string              `json:"error,omitempty"`
}

type MostMovedProduct struct {
	Name          string `json:"name"`
	MovementCount int    `json:"movement_count"`
}

type DashboardMetrics struct {
	TotalProducts      int              `json:"total_products"`
	TotalMovements     int              `json:"total_movements"`
	JournaledMovements int              `json:"journaled_movements"`
	LowStockCount      int              `json:"low_stock_count"`
	HighStockCount     int              `json:"high_stock_count"`
	MostMovedProduct   MostMovedProduct `json:"most_moved_product"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
