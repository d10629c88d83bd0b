package handlers

import (
	"github.com/rs/zerolog"

	"github.com/stockops/stock-console/internal/ledger"
	"github.com/stockops/stock-console/internal/redissvc"
	"github.com/stockops/stock-console/internal/repo"
)

// Server bundles the handler dependencies. It is constructed once in main and
// passed to the router; handlers hold no package-level state.
type Server struct {
	store   *ledger.Store
	journal repo.JournalRepository
	cache   *redissvc.SummaryCache // nil disables summary caching
	log     zerolog.Logger
}

func NewServer(store *ledger.Store, journal repo.JournalRepository, cache *redissvc.SummaryCache, log zerolog.Logger) *Server {
	return &Server{
		store:   store,
		journal: journal,
		cache:   cache,
		log:     log,
	}
}
