package features

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts without a zone are parsed as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Digit-only layouts, matched by exact length before the Unix ms fallback.
var compactLayouts = map[int]string{
	len("20060102"):       "20060102",
	len("20060102150405"): "20060102150405",
}

// ParseTimestamp coerces a textual timestamp to a UTC instant.
// Accepted forms:
//   - RFC3339, and naive date-times or dates (treated as UTC)
//   - compact YYYYMMDD and YYYYMMDDhhmmss (UTC)
//   - any other integer as Unix milliseconds
//
// A digit string of compact length that is not a valid date fails rather
// than falling back to milliseconds. Anything else fails with
// ErrMalformedTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}

	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		layout, compact := compactLayouts[len(v)]
		if !compact {
			return time.UnixMilli(ms).UTC(), nil
		}
		t, err := time.Parse(layout, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q is not a %s date", ErrMalformedTimestamp, s, layout)
		}
		return t.UTC(), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// ParseTimestampMs is ParseTimestamp returning Unix milliseconds.
func ParseTimestampMs(s string) (int64, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// FormatMs renders Unix milliseconds as RFC3339 in UTC.
func FormatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
