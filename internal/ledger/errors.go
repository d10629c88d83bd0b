package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks any network or HTTP level failure talking to the
	// upstream inventory API.
	ErrTransport = errors.New("transport failure")

	// ErrIntegrity marks malformed domain data (thresholds out of order,
	// invalid movement input). Integrity problems are surfaced, never
	// silently repaired.
	ErrIntegrity = errors.New("data integrity error")
)

// TransportError carries the HTTP status and optional server-provided message
// of a failed upstream call. A 401 is an ordinary TransportError as far as the
// ledger is concerned; credential refresh is the auth collaborator's problem.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream request failed: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream request failed: status %d", e.Status)
}

func (e *TransportError) Unwrap() error { return ErrTransport }

// ShapeError reports a response body that matched no recognized collection
// shape. The store recovers from it locally (empty sequence, logged) instead
// of propagating it to callers.
type ShapeError struct {
	Endpoint string
	Detail   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unrecognized response shape from %s: %s", e.Endpoint, e.Detail)
}

// IntegrityError describes a domain invariant violation in data we were asked
// to store or apply.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string { return "integrity: " + e.Reason }

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
