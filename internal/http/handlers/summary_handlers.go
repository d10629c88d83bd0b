package handlers

import (
	"context"
	"net/http"

	"github.com/stockops/stock-console/internal/ledger"
	"github.com/stockops/stock-console/internal/models"
)

const (
	dailySummaryKey  = "summary:daily"
	weeklySummaryKey = "summary:weekly"
)

// GetDailySummaryHandler serves the server-aggregated daily buckets, cached
// in redis for a short TTL when a cache is configured. ?refresh=1 bypasses
// the cache.
func (s *Server) GetDailySummaryHandler(w http.ResponseWriter, r *http.Request) {
	s.serveSummary(w, r, ledger.OpDailySummary, dailySummaryKey,
		s.store.FetchDailySummary, s.store.DailySummary)
}

// GetWeeklySummaryHandler is the trailing-week counterpart.
func (s *Server) GetWeeklySummaryHandler(w http.ResponseWriter, r *http.Request) {
	s.serveSummary(w, r, ledger.OpWeeklySummary, weeklySummaryKey,
		s.store.FetchWeeklySummary, s.store.WeeklySummary)
}

func (s *Server) serveSummary(w http.ResponseWriter, r *http.Request, op ledger.Operation,
	cacheKey string, fetch func(context.Context) error, current func() []models.SummaryRow) {

	ctx := r.Context()

	if s.cache != nil && !refreshRequested(r) {
		if rows, ok := s.cache.Get(ctx, cacheKey); ok {
			_ = writeJSON(w, http.StatusOK, SummaryResult{Data: rows, Cached: true})
			return
		}
	}

	err := fetch(ctx)
	rows := current()
	if err == nil && s.cache != nil {
		s.cache.Set(ctx, cacheKey, rows)
	}

	_ = writeJSON(w, http.StatusOK, SummaryResult{
		Data:  rows,
		Error: errString(s.store.Err(op)),
	})
}
