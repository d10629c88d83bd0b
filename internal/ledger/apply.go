package ledger

import (
	"fmt"

	"github.com/stockops/stock-console/internal/models"
)

// Apply computes the stock record that results from a confirmed movement
// event and reclassifies it.
//
// A movement for a different product leaves the record unchanged; callers
// batch-apply over the whole record set, so a mismatch is a no-op rather than
// an error.
//
// Quantity rules:
//
//	IN     quantity' = quantity + movement.Quantity
//	OUT    quantity' = max(0, quantity - movement.Quantity)
//	ADJUST quantity' = quantity (audit-only event, no delta)
//
// OUT movements that would underflow clamp to zero: the server ledger stays
// authoritative and the next full fetch supersedes the local projection, so a
// provisional floor of zero is preferable to rejecting an event the server
// already confirmed. ADJUST events record a physical recount or correction on
// the server side; they carry no delta for the client projection to apply.
func Apply(record models.StockRecord, movement models.MovementEvent) (models.StockRecord, error) {
	if movement.ProductID != record.ProductID {
		return record, nil
	}
	if movement.Quantity < 0 {
		return record, &IntegrityError{Reason: fmt.Sprintf(
			"movement %d carries negative quantity %d", movement.ID, movement.Quantity)}
	}

	switch movement.Type {
	case models.MovementIn:
		record.Quantity += movement.Quantity
	case models.MovementOut:
		record.Quantity -= movement.Quantity
		if record.Quantity < 0 {
			record.Quantity = 0
		}
	case models.MovementAdjust:
		// no quantity effect
	default:
		return record, &IntegrityError{Reason: fmt.Sprintf(
			"unknown movement type %q on movement %d", movement.Type, movement.ID)}
	}

	return ClassifyRecord(record)
}
