package handlers

import (
	"net/http"

	"github.com/stockops/stock-console/internal/ledger"
	"github.com/stockops/stock-console/internal/models"
)

// GetProductsHandler serves the reconciled product set. With ?refresh=1 it
// fetches from the upstream first; a failed fetch leaves the previous data
// visible and flags the error in the response.
func (s *Server) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	if refreshRequested(r) {
		_ = s.store.FetchProducts(r.Context())
	}
	products := s.store.Products()
	_ = writeJSON(w, http.StatusOK, ProductsResult{
		Data:  products,
		Meta:  Meta{TotalCount: len(products)},
		Error: errString(s.store.Err(ledger.OpProducts)),
	})
}

// GetStocksHandler serves the canonical stock record set with derived
// classifications.
func (s *Server) GetStocksHandler(w http.ResponseWriter, r *http.Request) {
	if refreshRequested(r) {
		_ = s.store.FetchStocks(r.Context())
	}
	s.writeStocks(w, s.store.Stocks())
}

// GetLowStocksHandler serves the LOW view, recomputed from the canonical set.
func (s *Server) GetLowStocksHandler(w http.ResponseWriter, r *http.Request) {
	if refreshRequested(r) {
		_ = s.store.FetchStocks(r.Context())
	}
	s.writeStocks(w, s.store.LowStockItems())
}

// GetHighStocksHandler serves the HIGH view.
func (s *Server) GetHighStocksHandler(w http.ResponseWriter, r *http.Request) {
	if refreshRequested(r) {
		_ = s.store.FetchStocks(r.Context())
	}
	s.writeStocks(w, s.store.HighStockItems())
}

func (s *Server) writeStocks(w http.ResponseWriter, records []models.StockRecord) {
	_ = writeJSON(w, http.StatusOK, StocksResult{
		Data:  records,
		Meta:  Meta{TotalCount: len(records)},
		Error: errString(s.store.Err(ledger.OpStocks)),
	})
}

// ResetHandler returns the store to its initial empty state. Front ends call
// it on logout; any in-flight upstream response is discarded afterwards.
func (s *Server) ResetHandler(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// HealthzHandler reports process liveness.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
