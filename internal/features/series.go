package features

// Series is a float column aligned to a sorted candle-open index.
type Series struct {
	Index  []int64   // candle open timestamps (ms), ascending, unique
	Values []float64 // one value per index entry
}

// NewSeries returns an all-zero series over index.
func NewSeries(index []int64) Series {
	return Series{Index: index, Values: make([]float64, len(index))}
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Values) }

// Sum returns the total of all values.
func (s Series) Sum() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

// lookup maps each index timestamp to its position.
func (s Series) lookup() map[int64]int {
	m := make(map[int64]int, len(s.Index))
	for i, ts := range s.Index {
		m[ts] = i
	}
	return m
}
