package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockops/stock-console/internal/models"
)

// Operation names one logical store operation. Each operation carries its own
// status and last-known error so an in-flight fetch never blocks, or blanks,
// an unrelated slice of state.
type Operation string

const (
	OpProducts       Operation = "products"
	OpStocks         Operation = "stocks"
	OpMovements      Operation = "movements"
	OpCreateMovement Operation = "create_movement"
	OpDailySummary   Operation = "daily_summary"
	OpWeeklySummary  Operation = "weekly_summary"
)

// Status is the per-operation state machine: IDLE -> LOADING -> {READY, ERROR}.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Transport is the narrow contract the store consumes. The concrete client
// handles bearer tokens, rate limiting and response-shape normalization; the
// store only sees decoded collections or errors.
type Transport interface {
	Products(ctx context.Context) ([]models.Product, error)
	Stocks(ctx context.Context) ([]models.StockRecord, error)
	Movements(ctx context.Context) ([]models.MovementEvent, error)
	CreateMovement(ctx context.Context, input models.MovementInput) (models.MovementEvent, error)
	DailySummary(ctx context.Context) ([]models.SummaryRow, error)
	WeeklySummary(ctx context.Context) ([]models.SummaryRow, error)
}

// Store holds the authoritative-as-known projection of the upstream stock
// ledger: products, stock records, movement history and summary buckets.
//
// Every mutation, optimistic or server-confirmed, runs through the movement
// applicator and threshold classifier so derived fields never go stale. The
// store is constructed explicitly and passed by reference; there is no
// package-level singleton.
type Store struct {
	transport Transport
	log       zerolog.Logger

	mu            sync.Mutex
	generation    uint64
	products      []models.Product
	stocks        []models.StockRecord
	movements     []models.MovementEvent
	dailySummary  []models.SummaryRow
	weeklySummary []models.SummaryRow
	applied       map[int]struct{}
	status        map[Operation]Status
	errs          map[Operation]error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for shape-error diagnostics and discarded
// stale responses.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore builds an empty store over the given transport.
func NewStore(t Transport, opts ...Option) *Store {
	s := &Store{
		transport: t,
		log:       zerolog.Nop(),
		applied:   make(map[int]struct{}),
		status:    make(map[Operation]Status),
		errs:      make(map[Operation]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin marks the operation loading, clears its previous error and captures
// the current generation. A response is only merged if the generation still
// matches when it arrives; Reset bumps the generation so late responses are
// discarded instead of resurrecting stale state.
func (s *Store) begin(op Operation) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[op] = StatusLoading
	delete(s.errs, op)
	return s.generation
}

// fail records the operation's error state. Previously fetched data for the
// operation's slice is left untouched. Caller holds s.mu.
func (s *Store) fail(op Operation, err error) {
	s.status[op] = StatusError
	s.errs[op] = err
}

// ready marks the operation complete. Caller holds s.mu.
func (s *Store) ready(op Operation) {
	s.status[op] = StatusReady
}

// recoverShape turns an unrecognized-shape failure into an empty collection.
// The caller is expected to treat the result as "no data", not as evidence of
// an empty data source; the error is logged and swallowed here.
func (s *Store) recoverShape(op Operation, err error) (recovered bool) {
	var shape *ShapeError
	if !errors.As(err, &shape) {
		return false
	}
	s.log.Warn().Str("operation", string(op)).Str("endpoint", shape.Endpoint).
		Str("detail", shape.Detail).Msg("unrecognized response shape, storing empty collection")
	return true
}

// FetchProducts replaces the product set wholesale.
func (s *Store) FetchProducts(ctx context.Context) error {
	gen := s.begin(OpProducts)
	products, err := s.transport.Products(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug().Str("operation", string(OpProducts)).Msg("discarding response for reset store")
		return nil
	}
	if err != nil {
		if !s.recoverShape(OpProducts, err) {
			s.fail(OpProducts, err)
			return err
		}
		products = nil
	}
	s.products = products
	s.ready(OpProducts)
	return nil
}

// FetchStocks replaces the full stock record set and recomputes every
// record's classification. On transport failure the previous set stays
// visible and the error is recorded; there is never a partial overwrite.
func (s *Store) FetchStocks(ctx context.Context) error {
	gen := s.begin(OpStocks)
	records, err := s.transport.Stocks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug().Str("operation", string(OpStocks)).Msg("discarding response for reset store")
		return nil
	}
	if err != nil {
		if !s.recoverShape(OpStocks, err) {
			s.fail(OpStocks, err)
			return err
		}
		records = nil
	}

	var integrity error
	for i := range records {
		r, cerr := ClassifyRecord(records[i])
		if cerr != nil && integrity == nil {
			integrity = cerr
		}
		records[i] = r
	}

	// The fetch supersedes any local optimistic projection.
	s.stocks = records
	if integrity != nil {
		s.fail(OpStocks, integrity)
		return integrity
	}
	s.ready(OpStocks)
	return nil
}

// FetchMovements replaces the movement history wholesale, newest first. The
// upstream does not guarantee order, so the store sorts before exposing.
func (s *Store) FetchMovements(ctx context.Context) error {
	gen := s.begin(OpMovements)
	events, err := s.transport.Movements(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug().Str("operation", string(OpMovements)).Msg("discarding response for reset store")
		return nil
	}
	if err != nil {
		if !s.recoverShape(OpMovements, err) {
			s.fail(OpMovements, err)
			return err
		}
		events = nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	s.movements = events

	// Everything in the fetched history is already reflected in the server
	// ledger; mark it so a later create response can never re-apply it.
	s.applied = make(map[int]struct{}, len(events))
	for _, ev := range events {
		s.applied[ev.ID] = struct{}{}
	}
	s.ready(OpMovements)
	return nil
}

// CreateMovement posts a movement to the upstream ledger. On success it
// appends the server-returned event (the server is authoritative for ID,
// performer and timestamp) and applies it exactly once to the matching stock
// record, reclassifying it, so client-visible quantities stay consistent
// without a refetch. On failure nothing changes and the error is recorded;
// the operation is never retried implicitly.
func (s *Store) CreateMovement(ctx context.Context, input models.MovementInput) (models.MovementEvent, error) {
	if err := validateMovementInput(input); err != nil {
		s.mu.Lock()
		s.fail(OpCreateMovement, err)
		s.mu.Unlock()
		return models.MovementEvent{}, err
	}
	if input.ReferenceNumber == "" {
		input.ReferenceNumber = "REF-" + strings.ToUpper(uuid.NewString()[:8])
	}

	gen := s.begin(OpCreateMovement)
	ev, err := s.transport.CreateMovement(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// A failed create is a failed create even when the store was reset
		// mid-flight; the generation guard only discards state merges.
		if gen == s.generation {
			s.fail(OpCreateMovement, err)
		}
		return models.MovementEvent{}, err
	}
	if gen != s.generation {
		s.log.Debug().Str("operation", string(OpCreateMovement)).Int("movement_id", ev.ID).
			Msg("discarding response for reset store")
		return ev, nil
	}

	if _, seen := s.applied[ev.ID]; !seen {
		s.movements = append([]models.MovementEvent{ev}, s.movements...)
		var applyErr error
		for i := range s.stocks {
			if s.stocks[i].ProductID != ev.ProductID {
				continue
			}
			updated, aerr := Apply(s.stocks[i], ev)
			if aerr != nil && applyErr == nil {
				applyErr = aerr
			}
			s.stocks[i] = updated
		}
		s.applied[ev.ID] = struct{}{}
		if applyErr != nil {
			s.fail(OpCreateMovement, applyErr)
			return ev, applyErr
		}
	}
	s.ready(OpCreateMovement)
	return ev, nil
}

// FetchDailySummary replaces the daily summary buckets.
func (s *Store) FetchDailySummary(ctx context.Context) error {
	return s.fetchSummary(ctx, OpDailySummary)
}

// FetchWeeklySummary replaces the weekly summary buckets.
func (s *Store) FetchWeeklySummary(ctx context.Context) error {
	return s.fetchSummary(ctx, OpWeeklySummary)
}

func (s *Store) fetchSummary(ctx context.Context, op Operation) error {
	gen := s.begin(op)
	var rows []models.SummaryRow
	var err error
	if op == OpDailySummary {
		rows, err = s.transport.DailySummary(ctx)
	} else {
		rows, err = s.transport.WeeklySummary(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug().Str("operation", string(op)).Msg("discarding response for reset store")
		return nil
	}
	if err != nil {
		if !s.recoverShape(op, err) {
			s.fail(op, err)
			return err
		}
		rows = nil
	}
	if op == OpDailySummary {
		s.dailySummary = rows
	} else {
		s.weeklySummary = rows
	}
	s.ready(op)
	return nil
}

// Reset returns the store to its initial empty state and bumps the
// generation so in-flight responses cannot write into the reset store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.products = nil
	s.stocks = nil
	s.movements = nil
	s.dailySummary = nil
	s.weeklySummary = nil
	s.applied = make(map[int]struct{})
	s.status = make(map[Operation]Status)
	s.errs = make(map[Operation]error)
}

func validateMovementInput(input models.MovementInput) error {
	if !input.Type.Valid() {
		return &IntegrityError{Reason: "unknown movement type " + string(input.Type)}
	}
	if input.Quantity < 0 {
		return &IntegrityError{Reason: "movement quantity cannot be negative"}
	}
	return nil
}

// Products returns a copy of the current product set.
func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.products...)
}

// Stocks returns a copy of the canonical stock record set.
func (s *Store) Stocks() []models.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StockRecord(nil), s.stocks...)
}

// Movements returns a copy of the movement history, newest first.
func (s *Store) Movements() []models.MovementEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MovementEvent(nil), s.movements...)
}

// DailySummary returns the last fetched daily buckets.
func (s *Store) DailySummary() []models.SummaryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SummaryRow(nil), s.dailySummary...)
}

// WeeklySummary returns the last fetched weekly buckets.
func (s *Store) WeeklySummary() []models.SummaryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SummaryRow(nil), s.weeklySummary...)
}

// LowStockItems is a filtered view over the canonical set; it is recomputed
// on every call, never stored as a second source of truth. Filtering on the
// derived classification keeps LOW and HIGH disjoint even when a record's
// thresholds coincide.
func (s *Store) LowStockItems() []models.StockRecord {
	return s.classifiedAs(models.ClassificationLow)
}

// HighStockItems is the HIGH counterpart of LowStockItems.
func (s *Store) HighStockItems() []models.StockRecord {
	return s.classifiedAs(models.ClassificationHigh)
}

func (s *Store) classifiedAs(c models.Classification) []models.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StockRecord
	for _, r := range s.stocks {
		if r.Classification == c {
			out = append(out, r)
		}
	}
	return out
}

// Status reports the operation's current state machine position.
func (s *Store) Status(op Operation) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[op]; ok {
		return st
	}
	return StatusIdle
}

// Err returns the operation's last-known error, or nil.
func (s *Store) Err(op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[op]
}

// Loading reports whether any operation is currently in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.status {
		if st == StatusLoading {
			return true
		}
	}
	return false
}
