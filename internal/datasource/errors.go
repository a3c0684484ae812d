package datasource

import "errors"

var (
	// ErrMissingColumn is returned when a CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrInvalidRecord is returned for a row or record that cannot be parsed.
	ErrInvalidRecord = errors.New("invalid record")
)
