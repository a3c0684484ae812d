package datasource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCandlesCSV_MsTimestampsSorted(t *testing.T) {
	input := `timestamp,open,high,low,close,volume
1704067500000,101,102,100,101.5,12
1704067200000,100,101,99,100.5,10
`
	candles, err := ReadCandlesCSV(strings.NewReader(input), "BTCUSDT", "5m")
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, int64(1704067200000), candles[0].TimestampMs)
	assert.Equal(t, int64(1704067500000), candles[1].TimestampMs)
	assert.Equal(t, "BTCUSDT", candles[0].Symbol)
	assert.Equal(t, "5m", candles[0].Timeframe)
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 101.0, candles[0].High)
	assert.Equal(t, 99.0, candles[0].Low)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, 10.0, candles[0].Volume)
}

func TestReadCandlesCSV_ISOAndColumnOrder(t *testing.T) {
	input := `Close, Volume, Date, Open, High, Low
100.5,10,2024-01-01 00:00:00,100,101,99
`
	candles, err := ReadCandlesCSV(strings.NewReader(input), "ETHUSDT", "1h")
	require.NoError(t, err)
	require.Len(t, candles, 1)

	assert.Equal(t, int64(1704067200000), candles[0].TimestampMs)
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 100.5, candles[0].Close)
}

func TestReadCandlesCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing column",
			input:   "timestamp,open,high,low,close\n1,1,1,1,1\n",
			wantErr: "missing column: volume",
		},
		{
			name:    "bad timestamp",
			input:   "timestamp,open,high,low,close,volume\nnoon,1,1,1,1,1\n",
			wantErr: "line 2: malformed timestamp",
		},
		{
			name:    "bad number",
			input:   "timestamp,open,high,low,close,volume\n1,1,1,1,1,1\n2,1,x,1,1,1\n",
			wantErr: `line 3: invalid record: high "x"`,
		},
		{
			name:    "negative price",
			input:   "timestamp,open,high,low,close,volume\n1,-1,1,1,1,1\n",
			wantErr: `line 2: invalid record: open "-1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCandlesCSV(strings.NewReader(tt.input), "BTCUSDT", "5m")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadCandlesCSV_Empty(t *testing.T) {
	candles, err := ReadCandlesCSV(strings.NewReader(""), "BTCUSDT", "5m")
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestLoadCandlesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,open,high,low,close,volume\n1704067200000,1,2,0.5,1.5,3\n"), 0644))

	candles, err := LoadCandlesCSV(path, "BTCUSDT", "5m")
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 1.5, candles[0].Close)

	_, err = LoadCandlesCSV(filepath.Join(t.TempDir(), "missing.csv"), "BTCUSDT", "5m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open candles csv")
}
