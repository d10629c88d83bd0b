package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/stockops/stock-console/internal/ledger"
	"github.com/stockops/stock-console/internal/models"
	"github.com/stockops/stock-console/internal/repo"
)

// GetMovementsHandler serves the movement history, newest first.
func (s *Server) GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	if refreshRequested(r) {
		_ = s.store.FetchMovements(r.Context())
	}
	movements := s.store.Movements()
	_ = writeJSON(w, http.StatusOK, MovementsResult{
		Data:  movements,
		Meta:  Meta{TotalCount: len(movements)},
		Error: errString(s.store.Err(ledger.OpMovements)),
	})
}

// CreateMovementHandler posts a movement to the upstream ledger through the
// store, then journals the server-confirmed event. Failures leave the store
// untouched and map to: 400 for invalid input, the upstream's own status for
// a 4xx rejection, 502 for anything else.
func (s *Server) CreateMovementHandler(w http.ResponseWriter, r *http.Request) {
	var input models.MovementInput
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}

	ev, err := s.store.CreateMovement(r.Context(), input)
	if err != nil {
		writeError(w, movementErrorStatus(err), err.Error())
		return
	}

	if jerr := s.journal.Record(ev); jerr != nil && !errors.Is(jerr, repo.ErrDuplicateEvent) {
		// Journal failures never fail the request; the movement is already
		// confirmed upstream.
		s.log.Warn().Int("movement_id", ev.ID).Err(jerr).Msg("could not journal movement")
	}

	_ = writeJSON(w, http.StatusCreated, ev)
}

func movementErrorStatus(err error) int {
	if errors.Is(err, ledger.ErrIntegrity) {
		return http.StatusBadRequest
	}
	var te *ledger.TransportError
	if errors.As(err, &te) {
		switch {
		case te.Status == http.StatusUnauthorized || te.Status == http.StatusForbidden:
			return http.StatusBadGateway
		case te.Status >= 400 && te.Status < 500:
			return te.Status
		}
	}
	return http.StatusBadGateway
}

// GetJournalHandler answers audit queries over the movements this gateway has
// seen confirmed. Query params: product_id (required), since, until
// (RFC3339), limit, offset.
func (s *Server) GetJournalHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.URL.Query().Get("product_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	var f repo.JournalFilter
	if f.Since, err = parseTimeParam(r.URL.Query().Get("since")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid since date format")
		return
	}
	if f.Until, err = parseTimeParam(r.URL.Query().Get("until")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid until date format")
		return
	}
	if f.Limit, err = parseIntParam(r.URL.Query().Get("limit")); err != nil || (f.Limit != nil && *f.Limit <= 0) {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if f.Offset, err = parseIntParam(r.URL.Query().Get("offset")); err != nil || (f.Offset != nil && *f.Offset < 0) {
		writeError(w, http.StatusBadRequest, "offset must be zero or positive")
		return
	}

	events, total, err := s.journal.ByProduct(productID, f)
	if err != nil {
		s.log.Error().Int("product_id", productID).Err(err).Msg("journal query failed")
		writeError(w, http.StatusInternalServerError, "could not retrieve journal")
		return
	}
	if events == nil {
		events = []models.MovementEvent{}
	}
	_ = writeJSON(w, http.StatusOK, MovementsResult{
		Data: events,
		Meta: Meta{TotalCount: total},
	})
}

// parseTimeParam parses an optional RFC3339 query value. URL decoding turns
// the + of a timezone offset into a space (2025-07-03T17:44:03+02:00 arrives
// as 2025-07-03T17:44:03 02:00), so that substitution is reversed first.
func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if len(v) == len(time.RFC3339) && v[len(v)-6] == ' ' {
		v = v[:len(v)-6] + "+" + v[len(v)-5:]
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parseIntParam(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
