package repo

import (
	"sort"
	"sync"

	"github.com/stockops/stock-console/internal/models"
)

// InMemoryJournalRepository is the default journal backend when no database
// is configured. Events live for the process lifetime only.
type InMemoryJournalRepository struct {
	mu     sync.Mutex
	events []models.MovementEvent
	seen   map[int]struct{}
}

// NewInMemoryJournalRepository creates an empty in-memory journal.
func NewInMemoryJournalRepository() *InMemoryJournalRepository {
	return &InMemoryJournalRepository{
		seen: make(map[int]struct{}),
	}
}

// Record appends a confirmed event.
func (r *InMemoryJournalRepository) Record(ev models.MovementEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[ev.ID]; ok {
		return ErrDuplicateEvent
	}
	r.seen[ev.ID] = struct{}{}
	r.events = append(r.events, ev)
	return nil
}

// ByProduct returns a product's journaled events, newest first, optionally
// filtered by time range and paginated.
func (r *InMemoryJournalRepository) ByProduct(productID int, f JournalFilter) ([]models.MovementEvent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var filtered []models.MovementEvent
	for _, ev := range r.events {
		if ev.ProductID != productID {
			continue
		}
		if f.Since != nil && ev.Timestamp.Before(*f.Since) {
			continue
		}
		if f.Until != nil && ev.Timestamp.After(*f.Until) {
			continue
		}
		filtered = append(filtered, ev)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	total := len(filtered)

	start := 0
	if f.Offset != nil {
		start = clamp(*f.Offset, 0, total)
	}
	end := total
	if f.Limit != nil && *f.Limit > 0 {
		end = clamp(start+*f.Limit, start, total)
	}

	return filtered[start:end], total, nil
}

// Count returns the total number of journaled events.
func (r *InMemoryJournalRepository) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events), nil
}

// CountByProduct returns per-product event counts.
func (r *InMemoryJournalRepository) CountByProduct() (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[int]int)
	for _, ev := range r.events {
		counts[ev.ProductID]++
	}
	return counts, nil
}

// Clear empties the journal. Test helper.
func (r *InMemoryJournalRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.seen = make(map[int]struct{})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
