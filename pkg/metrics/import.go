package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records what each import run did. A nil *ImportMetrics is
// valid and records nothing.
type ImportMetrics struct {
	rowsExtracted *prometheus.CounterVec
	rowsRejected  *prometheus.CounterVec
	consolidated  *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	fallbacks     prometheus.Counter
	duration      *prometheus.HistogramVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	rowsExtracted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occ_rows_extracted_total",
		Help: "Spreadsheet rows turned into records.",
	}, []string{"schema"})
	rowsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occ_rows_rejected_total",
		Help: "Spreadsheet rows dropped by the retention rules.",
	}, []string{"schema"})
	consolidated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occ_consolidated_records_total",
		Help: "Consolidated records produced.",
	}, []string{"origin"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occ_upsert_outcomes_total",
		Help: "Upsert outcomes by kind.",
	}, []string{"kind"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "occ_batch_fallbacks_total",
		Help: "Batch submissions that degraded to individual calls.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "occ_import_duration_seconds",
		Help:    "Duration of import stages in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	reg.MustRegister(rowsExtracted, rowsRejected, consolidated, outcomes, fallbacks, duration)
	return &ImportMetrics{
		rowsExtracted: rowsExtracted,
		rowsRejected:  rowsRejected,
		consolidated:  consolidated,
		outcomes:      outcomes,
		fallbacks:     fallbacks,
		duration:      duration,
	}
}

// AddExtracted counts retained and rejected rows for a schema ("main" or "detail").
func (m *ImportMetrics) AddExtracted(schema string, retained, rejected int) {
	if m == nil || m.rowsExtracted == nil {
		return
	}
	m.rowsExtracted.WithLabelValues(normalizeLabel(schema)).Add(float64(retained))
	m.rowsRejected.WithLabelValues(normalizeLabel(schema)).Add(float64(rejected))
}

// AddConsolidated counts consolidated records by origin ("main" or "placeholder").
func (m *ImportMetrics) AddConsolidated(origin string, n int) {
	if m == nil || m.consolidated == nil {
		return
	}
	m.consolidated.WithLabelValues(normalizeLabel(origin)).Add(float64(n))
}

// AddOutcomes counts upsert outcomes of one kind.
func (m *ImportMetrics) AddOutcomes(kind string, n int) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

// IncFallback counts a batch that degraded to individual submissions.
func (m *ImportMetrics) IncFallback() {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.Inc()
}

// ObserveStage records how long a pipeline stage took.
func (m *ImportMetrics) ObserveStage(stage string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(stage)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
