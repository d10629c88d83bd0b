package ledger

import (
	"fmt"

	"github.com/stockops/stock-console/internal/models"
)

// Classify maps a quantity against its thresholds to an alert state.
//
// Rules, in precedence order:
//  1. quantity <= minimum  -> LOW
//  2. quantity >= maximum  -> HIGH
//  3. otherwise            -> NORMAL
//
// When minimum == maximum and the quantity equals both, LOW wins: ties resolve
// toward the more alerting state. A threshold pair with minimum > maximum is
// malformed data and comes back as an IntegrityError rather than a guess.
func Classify(quantity, minimumThreshold, maximumThreshold int) (models.Classification, error) {
	if minimumThreshold > maximumThreshold {
		return "", &IntegrityError{Reason: fmt.Sprintf(
			"minimum threshold %d exceeds maximum threshold %d", minimumThreshold, maximumThreshold)}
	}
	switch {
	case quantity <= minimumThreshold:
		return models.ClassificationLow, nil
	case quantity >= maximumThreshold:
		return models.ClassificationHigh, nil
	default:
		return models.ClassificationNormal, nil
	}
}

// ClassifyRecord recomputes the derived classification of a stock record.
func ClassifyRecord(r models.StockRecord) (models.StockRecord, error) {
	c, err := Classify(r.Quantity, r.MinimumThreshold, r.MaximumThreshold)
	if err != nil {
		r.Classification = ""
		return r, err
	}
	r.Classification = c
	return r, nil
}
