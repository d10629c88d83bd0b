// Package repo persists the audit journal of server-confirmed movement
// events observed by this gateway. The journal is append-only and strictly
// supplementary: listings always come from the ledger store, which the
// upstream server stays authoritative for.
package repo

import (
	"errors"
	"time"

	"github.com/stockops/stock-console/internal/models"
)

// JournalFilter narrows and paginates a journal query.
type JournalFilter struct {
	Since  *time.Time
	Until  *time.Time
	Limit  *int
	Offset *int
}

// JournalRepository records confirmed movement events and answers audit
// queries over them.
type JournalRepository interface {
	// Record appends a confirmed event. Recording the same event ID twice
	// returns ErrDuplicateEvent.
	Record(ev models.MovementEvent) error

	// ByProduct returns a product's journaled events, newest first, with the
	// total count before pagination.
	ByProduct(productID int, f JournalFilter) ([]models.MovementEvent, int, error)

	// Count returns the total number of journaled events.
	Count() (int, error)

	// CountByProduct returns the number of journaled events per product ID.
	CountByProduct() (map[int]int, error)
}

// ErrDuplicateEvent is returned when an event ID is recorded twice.
var ErrDuplicateEvent = errors.New("movement event already journaled")
