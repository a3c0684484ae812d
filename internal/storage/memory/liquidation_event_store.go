package memory

import (
	"context"
	"sort"
	"sync"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// liquidationKey is the unique key for liquidation events.
type liquidationKey struct {
	symbol      string
	timestampMs int64
	side        domain.LiquidationSide
}

// LiquidationEventStore is an in-memory implementation of storage.LiquidationEventStore.
type LiquidationEventStore struct {
	mu   sync.RWMutex
	data map[liquidationKey]*domain.LiquidationEvent
}

// NewLiquidationEventStore creates a new in-memory liquidation event store.
func NewLiquidationEventStore() *LiquidationEventStore {
	return &LiquidationEventStore{
		data: make(map[liquidationKey]*domain.LiquidationEvent),
	}
}

func keyOfEvent(e *domain.LiquidationEvent) liquidationKey {
	return liquidationKey{symbol: e.Symbol, timestampMs: e.TimestampMs, side: e.Side}
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *LiquidationEventStore) InsertBulk(_ context.Context, events []*domain.LiquidationEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[liquidationKey]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.Symbol == "" {
			return storage.ErrInvalidInput
		}
		if _, ok := domain.ParseLiquidationSide(string(e.Side)); !ok {
			return storage.ErrInvalidInput
		}
		key := keyOfEvent(e)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, e := range events {
		cp := *e
		s.data[keyOfEvent(e)] = &cp
	}
	return nil
}

// GetByTimeRange retrieves events within [start, end), ordered by (timestamp, side) ASC.
func (s *LiquidationEventStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.LiquidationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquidationEvent
	for k, e := range s.data {
		if k.symbol == symbol && k.timestampMs >= start && k.timestampMs < end {
			cp := *e
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimestampMs != result[j].TimestampMs {
			return result[i].TimestampMs < result[j].TimestampMs
		}
		return result[i].Side < result[j].Side
	})
	return result, nil
}

var _ storage.LiquidationEventStore = (*LiquidationEventStore)(nil)
