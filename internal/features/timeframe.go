package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
	minutesPerWeek = 7 * minutesPerDay

	// maxTimeframeMinutes bounds N so the width cannot overflow.
	maxTimeframeMinutes = 52 * minutesPerWeek

	msPerMinute = int64(60 * 1000)
	msPerDay    = int64(minutesPerDay) * msPerMinute
)

// Timeframe is a parsed candle width such as 5m, 1h or 1d.
type Timeframe struct {
	raw     string
	minutes int
}

// ParseTimeframe parses "<N><unit>" where unit is m, h, d or w and N >= 1.
// Widths above 52 weeks are rejected.
func ParseTimeframe(s string) (Timeframe, error) {
	raw := strings.TrimSpace(s)
	if len(raw) < 2 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}

	n, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || n < 1 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}

	var unit int
	switch raw[len(raw)-1] {
	case 'm':
		unit = 1
	case 'h', 'H':
		unit = minutesPerHour
	case 'd', 'D':
		unit = minutesPerDay
	case 'w', 'W':
		unit = minutesPerWeek
	default:
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}

	if n > maxTimeframeMinutes/unit {
		return Timeframe{}, fmt.Errorf("%w: %q exceeds 52w", ErrInvalidTimeframe, s)
	}
	return Timeframe{raw: raw, minutes: n * unit}, nil
}

// MustParseTimeframe is ParseTimeframe for literals known to be valid.
func MustParseTimeframe(s string) Timeframe {
	tf, err := ParseTimeframe(s)
	if err != nil {
		panic(err)
	}
	return tf
}

// Minutes returns the candle width in minutes.
func (tf Timeframe) Minutes() int { return tf.minutes }

// DurationMs returns the candle width in milliseconds.
func (tf Timeframe) DurationMs() int64 { return int64(tf.minutes) * msPerMinute }

// String returns the timeframe as it was configured.
func (tf Timeframe) String() string { return tf.raw }

// AggregationWindowCandles converts the aggregation window from minutes to a
// candle count: max(1, minutes / timeframe minutes), truncated.
func AggregationWindowCandles(aggregationMinutes int, tf Timeframe) int {
	if tf.minutes <= 0 {
		return 1
	}
	w := aggregationMinutes / tf.minutes
	if w < 1 {
		return 1
	}
	return w
}

// LookbackCandles converts the lookback window from days to a candle count:
// max(1, round(days * 1440 / timeframe minutes)).
func LookbackCandles(lookbackDays int, tf Timeframe) int {
	if tf.minutes <= 0 {
		return 1
	}
	w := int(math.Round(float64(lookbackDays) * minutesPerDay / float64(tf.minutes)))
	if w < 1 {
		return 1
	}
	return w
}
