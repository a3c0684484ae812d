package datasource

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/features"
)

func TestReadLiquidationsJSON(t *testing.T) {
	input := `[
		{"timestamp": 1704067500000, "timestamp_iso": "2024-01-01T00:05:00Z", "side": "sell", "cumulated_usd_size": 2500.5},
		{"timestamp_iso": "2024-01-01T00:00:00Z", "side": "BUY", "cumulated_usd_size": 100},
		{"timestamp": "1704067500000", "side": "Buy", "cumulated_usd_size": 50}
	]`

	events, err := ReadLiquidationsJSON(strings.NewReader(input), "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, &domain.LiquidationEvent{Symbol: "BTCUSDT", TimestampMs: 1704067200000, Side: domain.LiquidationSideBuy, SizeUSD: 100}, events[0])
	assert.Equal(t, &domain.LiquidationEvent{Symbol: "BTCUSDT", TimestampMs: 1704067500000, Side: domain.LiquidationSideBuy, SizeUSD: 50}, events[1])
	assert.Equal(t, &domain.LiquidationEvent{Symbol: "BTCUSDT", TimestampMs: 1704067500000, Side: domain.LiquidationSideSell, SizeUSD: 2500.5}, events[2])
}

func TestReadLiquidationsJSON_MergesSameSideAndTime(t *testing.T) {
	input := `[
		{"timestamp": 1000, "side": "SELL", "cumulated_usd_size": 10},
		{"timestamp": 1000, "side": "SELL", "cumulated_usd_size": 15}
	]`

	events, err := ReadLiquidationsJSON(strings.NewReader(input), "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 25.0, events[0].SizeUSD)
}

func TestReadLiquidationsJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIs  error
		wantErr string
	}{
		{
			name:    "unknown side",
			input:   `[{"timestamp": 1, "side": "LONG", "cumulated_usd_size": 1}]`,
			wantIs:  ErrInvalidRecord,
			wantErr: `record 0: invalid record: side "LONG"`,
		},
		{
			name:    "negative size",
			input:   `[{"timestamp": 1, "side": "BUY", "cumulated_usd_size": -5}]`,
			wantIs:  ErrInvalidRecord,
			wantErr: "record 0: invalid record: cumulated_usd_size -5",
		},
		{
			name:    "no timestamp",
			input:   `[{"side": "BUY", "cumulated_usd_size": 1}]`,
			wantIs:  ErrInvalidRecord,
			wantErr: "record 0: invalid record: no timestamp",
		},
		{
			name:    "malformed iso",
			input:   `[{"timestamp_iso": "soon", "side": "BUY", "cumulated_usd_size": 1}]`,
			wantIs:  features.ErrMalformedTimestamp,
			wantErr: "record 0: malformed timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLiquidationsJSON(strings.NewReader(tt.input), "BTCUSDT")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantIs), "error %v is not %v", err, tt.wantIs)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadLiquidationsJSON_NotAnArray(t *testing.T) {
	_, err := ReadLiquidationsJSON(strings.NewReader(`{"data": []}`), "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode liquidations")
}

func TestReadLiquidationsJSON_Empty(t *testing.T) {
	events, err := ReadLiquidationsJSON(strings.NewReader(`[]`), "BTCUSDT")
	require.NoError(t, err)
	assert.Empty(t, events)
}
