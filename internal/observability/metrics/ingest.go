package metrics

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics exposes counters/histograms for the ingestion pipeline.
type IngestMetrics struct {
	batchesTotal  *prometheus.CounterVec
	rowEffects    *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	m := &IngestMetrics{
		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blueprint",
			Subsystem: "ingest",
			Name:      "batches_total",
			Help:      "Total ingestion batches by target table and status",
		}, []string{"target_table", "status"}),
		rowEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blueprint",
			Subsystem: "ingest",
			Name:      "row_effects_total",
			Help:      "Canonical-table row effects by target table and outcome",
		}, []string{"target_table", "outcome"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blueprint",
			Subsystem: "ingest",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of ingestion batches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target_table"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.batchesTotal, m.rowEffects, m.batchDuration)
	return m
}

func (m *IngestMetrics) ObserveBatch(table string, status string, seconds float64) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(table, status).Inc()
	m.batchDuration.WithLabelValues(table).Observe(seconds)
}

func (m *IngestMetrics) ObserveRowEffects(table string, inserted, updated, unchanged int) {
	if m == nil {
		return
	}
	m.rowEffects.WithLabelValues(table, "inserted").Add(float64(inserted))
	m.rowEffects.WithLabelValues(table, "updated").Add(float64(updated))
	m.rowEffects.WithLabelValues(table, "unchanged").Add(float64(unchanged))
}
