package features

import "math"

// RollingSum returns the trailing sum over window points with a minimum
// period of 1: leading partial windows sum whatever is available.
// A window holding only zeros yields exactly 0.
func RollingSum(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	out := make([]float64, len(values))
	var sum compensatedSum
	var nonZero int

	for i, v := range values {
		if v != 0 {
			sum.add(v)
			nonZero++
		}
		if i >= window {
			if old := values[i-window]; old != 0 {
				sum.add(-old)
				nonZero--
			}
		}

		if nonZero == 0 {
			sum.reset()
		}
		out[i] = clampNonNegative(sum.value())
	}

	return out
}

// RollingMeanNonZero returns the trailing mean over window points counting
// only strictly positive values in both numerator and denominator.
// Positions whose window has no positive value yield 0.
func RollingMeanNonZero(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	out := make([]float64, len(values))
	var sum compensatedSum
	var count int

	for i, v := range values {
		if v > 0 {
			sum.add(v)
			count++
		}
		if i >= window {
			if old := values[i-window]; old > 0 {
				sum.add(-old)
				count--
			}
		}

		if count == 0 {
			sum.reset()
			out[i] = 0
			continue
		}
		out[i] = clampNonNegative(sum.value()) / float64(count)
	}

	return out
}

// compensatedSum is a Neumaier running sum. The compensation term carries
// the low-order bits lost when a large value enters or leaves the window.
type compensatedSum struct {
	sum  float64
	comp float64
}

func (s *compensatedSum) add(v float64) {
	t := s.sum + v
	if math.Abs(s.sum) >= math.Abs(v) {
		s.comp += (s.sum - t) + v
	} else {
		s.comp += (v - t) + s.sum
	}
	s.sum = t
}

func (s *compensatedSum) value() float64 { return s.sum + s.comp }

func (s *compensatedSum) reset() { *s = compensatedSum{} }

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
