package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/stockops/stock-console/internal/http/handlers"
)

// NewRouter wires the gateway's HTTP surface. The consumers are browser
// front ends, so CORS is part of the contract; everything except the health
// check sits behind bearer auth.
func NewRouter(s *handlers.Server, jwtSecret string, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handlers.HealthzHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(jwtSecret))

		pr.Get("/products", s.GetProductsHandler)

		pr.Get("/stocks", s.GetStocksHandler)
		pr.Get("/stocks/low", s.GetLowStocksHandler)
		pr.Get("/stocks/high", s.GetHighStocksHandler)

		pr.Get("/movements", s.GetMovementsHandler)
		pr.Post("/movements", s.CreateMovementHandler)
		pr.Get("/movements/journal", s.GetJournalHandler)

		pr.Get("/summaries/daily", s.GetDailySummaryHandler)
		pr.Get("/summaries/weekly", s.GetWeeklySummaryHandler)

		pr.Get("/metrics/dashboard", s.GetDashboardMetricsHandler)

		pr.Post("/reset", s.ResetHandler)
	})

	return r
}
