package client

import (
	"bytes"
	"encoding/json"

	"github.com/stockops/stock-console/internal/ledger"
)

// decodeCollection normalizes the two collection shapes the upstream is known
// to serve: a bare JSON array, or an envelope with a named results field
// ("results" for paginated endpoints, "data" elsewhere). Anything else is a
// ShapeError; the store recovers from that by treating the collection as
// empty, so a half-parsed structure is never stored.
func decodeCollection[T any](endpoint string, body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &ledger.ShapeError{Endpoint: endpoint, Detail: "empty body"}
	}

	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, &ledger.ShapeError{Endpoint: endpoint, Detail: err.Error()}
		}
		return out, nil
	}

	var envelope struct {
		Results json.RawMessage `json:"results"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, &ledger.ShapeError{Endpoint: endpoint, Detail: err.Error()}
	}

	raw := envelope.Results
	if raw == nil {
		raw = envelope.Data
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &ledger.ShapeError{Endpoint: endpoint, Detail: "no recognized collection field"}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ledger.ShapeError{Endpoint: endpoint, Detail: err.Error()}
	}
	return out, nil
}
