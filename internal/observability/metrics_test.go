package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatheredValue sums counter values of the named family.
func gatheredValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()

	families, err := g.Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.FeatureComputations.WithLabelValues("ok").Inc()
	m.FeatureComputations.WithLabelValues("empty").Inc()
	m.EventsBinned.Add(5)
	m.UnitsTotal.WithLabelValues("COUNTER_TRADE", "failed").Inc()

	assert.Equal(t, 2.0, gatheredValue(t, reg, "test_features_computations_total"))
	assert.Equal(t, 5.0, gatheredValue(t, reg, "test_features_events_binned_total"))
	assert.Equal(t, 1.0, gatheredValue(t, reg, "test_optimizer_units_total"))
}

func TestRecordFeatureComputation_DefaultMetrics(t *testing.T) {
	name := "liquidation_signal_lab_features_events_out_of_range_total"

	before := gatheredValue(t, prometheus.DefaultGatherer, name)
	RecordFeatureComputation("ok", 10, 4, 2, 1, 0.01)
	assert.Equal(t, before+2, gatheredValue(t, prometheus.DefaultGatherer, name))
}
