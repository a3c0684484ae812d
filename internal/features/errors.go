package features

import "errors"

var (
	// ErrInvalidTimeframe is returned when a timeframe string cannot be parsed.
	ErrInvalidTimeframe = errors.New("invalid timeframe")

	// ErrMalformedTimestamp is returned when a timestamp cannot be coerced to UTC.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrDuplicateCandle is returned when the candle grid repeats a timestamp.
	ErrDuplicateCandle = errors.New("duplicate candle timestamp")

	// ErrInvalidRange is returned when the requested range is empty or inverted.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrInvalidWindow is returned when a window parameter is negative.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrNoData is returned by callers that cannot work with an empty
	// feature table. Compute itself returns the empty table.
	ErrNoData = errors.New("no candles in requested range")
)
