package features

import (
	"errors"
	"testing"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		wantErr bool
	}{
		{"1m", 1, false},
		{"5m", 5, false},
		{"15m", 15, false},
		{"1h", 60, false},
		{"4h", 240, false},
		{"1d", 1440, false},
		{"1w", 10080, false},
		{" 5m ", 5, false},
		{"", 0, true},
		{"m", 0, true},
		{"0m", 0, true},
		{"-5m", 0, true},
		{"5x", 0, true},
		{"5M", 0, true},
		{"five", 0, true},
		{"52w", 52 * 10080, false},
		{"524160m", 524160, false},
		{"53w", 0, true},
		{"524161m", 0, true},
		{"99999999999999w", 0, true},
		{"99999999999999999999m", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tf, err := ParseTimeframe(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeframe) {
					t.Fatalf("expected ErrInvalidTimeframe, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tf.Minutes() != tt.minutes {
				t.Errorf("minutes: got %d, want %d", tf.Minutes(), tt.minutes)
			}
			if tf.DurationMs() != int64(tt.minutes)*60000 {
				t.Errorf("duration: got %d", tf.DurationMs())
			}
		})
	}
}

func TestAggregationWindowCandles(t *testing.T) {
	tests := []struct {
		minutes int
		tf      string
		want    int
	}{
		{60, "5m", 12},
		{5, "5m", 1},
		{7, "5m", 1},  // truncated
		{14, "5m", 2}, // truncated
		{3, "5m", 1},  // floored at 1
		{0, "1h", 1},
		{240, "1h", 4},
	}

	for _, tt := range tests {
		got := AggregationWindowCandles(tt.minutes, MustParseTimeframe(tt.tf))
		if got != tt.want {
			t.Errorf("AggregationWindowCandles(%d, %s) = %d, want %d", tt.minutes, tt.tf, got, tt.want)
		}
	}
}

func TestLookbackCandles(t *testing.T) {
	tests := []struct {
		days int
		tf   string
		want int
	}{
		{14, "5m", 4032},
		{1, "1h", 24},
		{7, "1d", 7},
		{1, "1w", 1},  // round(1/7) = 0, floored at 1
		{4, "1w", 1},  // round(4/7) = 1
		{11, "1w", 2}, // round(11/7) = 2
		{0, "5m", 1},
	}

	for _, tt := range tests {
		got := LookbackCandles(tt.days, MustParseTimeframe(tt.tf))
		if got != tt.want {
			t.Errorf("LookbackCandles(%d, %s) = %d, want %d", tt.days, tt.tf, got, tt.want)
		}
	}
}

func TestWindowsOnZeroTimeframe(t *testing.T) {
	var tf Timeframe
	if AggregationWindowCandles(60, tf) != 1 || LookbackCandles(14, tf) != 1 {
		t.Errorf("zero timeframe must floor windows at 1")
	}
}
