package memory

import (
	"context"
	"sort"
	"sync"

	"liquidation-signal-lab/internal/domain"
	"liquidation-signal-lab/internal/storage"
)

// featureKey is the unique key for feature rows.
type featureKey struct {
	series      domain.FeatureKey
	timestampMs int64
}

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[featureKey]*domain.FeatureRow
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[featureKey]*domain.FeatureRow),
	}
}

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *FeatureStore) InsertBulk(_ context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[featureKey]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Symbol == "" || r.Timeframe == "" {
			return storage.ErrInvalidInput
		}
		key := featureKey{series: r.Key(), timestampMs: r.TimestampMs}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		cp := *r
		s.data[featureKey{series: r.Key(), timestampMs: r.TimestampMs}] = &cp
	}
	return nil
}

// GetByTimeRange retrieves rows of one series within [start, end), ordered by timestamp ASC.
func (s *FeatureStore) GetByTimeRange(_ context.Context, key domain.FeatureKey, start, end int64) ([]*domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureRow
	for k, r := range s.data {
		if k.series == key && k.timestampMs >= start && k.timestampMs < end {
			cp := *r
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
