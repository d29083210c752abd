package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportMetricsRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewImportMetrics(reg)

	m.AddExtracted("main", 10, 2)
	m.AddExtracted("detail", 4, 0)
	m.AddConsolidated("placeholder", 3)
	m.AddOutcomes("created", 7)
	m.AddOutcomes("", 1)
	m.IncFallback()
	m.ObserveStage("submit", 250*time.Millisecond)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.rowsExtracted.WithLabelValues("main")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rowsRejected.WithLabelValues("main")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.rowsExtracted.WithLabelValues("detail")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.consolidated.WithLabelValues("placeholder")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.outcomes.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))

	count, err := testutil.GatherAndCount(reg, "occ_import_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilImportMetricsIsSafe(t *testing.T) {
	var m *ImportMetrics
	assert.NotPanics(t, func() {
		m.AddExtracted("main", 1, 1)
		m.AddConsolidated("main", 1)
		m.AddOutcomes("failed", 1)
		m.IncFallback()
		m.ObserveStage("read", time.Second)
	})

	unregistered := NewImportMetrics(nil)
	assert.NotPanics(t, func() { unregistered.IncFallback() })
}
