package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxRangeValues caps how many candidates a single range may expand to.
const MaxRangeValues = 10000

// Floats expands the range into its candidate values.
// Start/end/step ranges include end and are rounded to the step's decimals
// (two decimals for integral steps) so accumulated float error does not leak
// into parameter IDs.
func (r *Range) Floats(prefix string) ([]float64, error) {
	if len(r.Values) > 0 {
		if r.Start != nil || r.End != nil || r.Step != nil {
			return nil, fmt.Errorf("%s: values cannot be combined with start/end/step", prefix)
		}
		return append([]float64(nil), r.Values...), nil
	}

	if r.Start == nil || r.End == nil || r.Step == nil {
		return nil, fmt.Errorf("%s needs values or start, end and step", prefix)
	}
	start, end, step := *r.Start, *r.End, *r.Step
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%s.step must be > 0, got %v", prefix, step)
	}
	if end < start {
		return nil, fmt.Errorf("%s.end (%v) cannot be less than start (%v)", prefix, end, start)
	}
	if n := (end-start)/step + 1; n > MaxRangeValues {
		return nil, fmt.Errorf("%s expands to more than %d values", prefix, MaxRangeValues)
	}

	decimals := stepDecimals(step)
	tolerance := step / 1e6
	var out []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > end+tolerance {
			break
		}
		out = append(out, round(v, decimals))
	}
	return out, nil
}

// Ints expands the range and requires every candidate to be integral.
func (r *Range) Ints(prefix string) ([]int, error) {
	values, err := r.Floats(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%s must contain whole numbers, got %v", prefix, v)
		}
		out[i] = int(v)
	}
	return out, nil
}

func stepDecimals(step float64) int {
	s := strconv.FormatFloat(step, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 2
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
