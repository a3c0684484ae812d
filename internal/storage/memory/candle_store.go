package memory

import (
	"context"
	"sort"
	"sync"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// candleKey is the unique key for candles.
type candleKey struct {
	symbol      string
	timeframe   string
	timestampMs int64
}

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[candleKey]*domain.Candle
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[candleKey]*domain.Candle),
	}
}

func keyOfCandle(c *domain.Candle) candleKey {
	return candleKey{symbol: c.Symbol, timeframe: c.Timeframe, timestampMs: c.TimestampMs}
}

// InsertBulk adds multiple candles atomically. Fails entire batch on any duplicate.
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[candleKey]struct{}, len(candles))
	for _, c := range candles {
		if c == nil || c.Symbol == "" || c.Timeframe == "" {
			return storage.ErrInvalidInput
		}
		key := keyOfCandle(c)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, c := range candles {
		cp := *c
		s.data[keyOfCandle(c)] = &cp
	}
	return nil
}

// GetByTimeRange retrieves candles within [start, end), ordered by timestamp ASC.
func (s *CandleStore) GetByTimeRange(_ context.Context, symbol, timeframe string, start, end int64) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for k, c := range s.data {
		if k.symbol == symbol && k.timeframe == timeframe && k.timestampMs >= start && k.timestampMs < end {
			cp := *c
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

var _ storage.CandleStore = (*CandleStore)(nil)
