package storage

import "errors"

// Sentinel errors shared by every store implementation.
var (
	// ErrNotFound is returned when a lookup by key matches no record.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an existing
	// key. Stores are append-only: candles, events, feature rows, trades and
	// summaries are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned for nil records or records missing key fields.
	ErrInvalidInput = errors.New("invalid input")
)
