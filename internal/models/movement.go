package models

import "time"

// MovementType discriminates stock movement events.
type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// Valid reports whether t is one of the known movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust:
		return true
	}
	return false
}

// MovementEvent is an immutable fact describing a confirmed quantity change.
// The server is authoritative for ID, PerformedBy and Timestamp; events are
// append-only and never mutated or deleted by this gateway.
type MovementEvent struct {
	ID              int          `json:"id"`
	ProductID       int          `json:"product"`
	ProductName     string       `json:"product_name,omitempty"`
	Type            MovementType `json:"movement_type"`
	Quantity        int          `json:"quantity"`
	ReferenceNumber string       `json:"reference_number"`
	Timestamp       time.Time    `json:"timestamp"`
	PerformedBy     int          `json:"performed_by"`
	PerformedByName string       `json:"performed_by_username,omitempty"`
	Notes           string       `json:"notes"`
}

// MovementInput is the client-constructed request to create a movement. The
// authoritative record is always the server's response, not this struct.
type MovementInput struct {
	ProductID       int          `json:"product"`
	Type            MovementType `json:"movement_type"`
	Quantity        int          `json:"quantity"`
	ReferenceNumber string       `json:"reference_number"`
	Notes           string       `json:"notes"`
}
