package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analytics service.
type Metrics struct {
	DatasetLoads *prometheus.CounterVec // labels: outcome={success,not_found,schema,empty,error}

	// Snapshot gauges, set after each successful load.
	DatasetRows        prometheus.Gauge
	DatasetMissing     prometheus.Gauge
	DatasetSkipped     prometheus.Gauge
	RiskThreshold      prometheus.Gauge
	HighRiskDistricts  prometheus.Gauge
	MetricsConsistent  prometheus.Gauge
	MapAssetPresent    prometheus.Gauge

	Queries        *prometheus.CounterVec // labels: endpoint
	ExportDuration prometheus.Histogram

	ReloadEventsPublished prometheus.Counter
	ReloadPublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetRows,
		m.DatasetMissing,
		m.DatasetSkipped,
		m.RiskThreshold,
		m.HighRiskDistricts,
		m.MetricsConsistent,
		m.MapAssetPresent,
		m.Queries,
		m.ExportDuration,
		m.ReloadEventsPublished,
		m.ReloadPublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frost_risk",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frost_risk",
			Name:      "dataset_rows",
			Help:      "District rows in the current snapshot.",
		}),
		DatasetMissing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frost_risk",
			Name:      "dataset_missing_means",
			Help:      "Rows in the current snapshot with an unusable mean temperature.",
		}),
		DatasetSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frost_risk",
			Name:      "dataset_skipped_rows",
			Help:      "Source rows dropped during the last load (blank identity or duplicate).",
		}),
		RiskThreshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frost_risk",
			Name:      "risk_threshold_celsius",
			Help:      "Risk threshold of the current snapshot (10th percentile of district means).",
		}),
		HighRiskDistricts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frost_risk",
			Name:      "high_risk_districts",
			Help:      "Districts at or below the risk threshold in the current snapshot.",
		}),
		MetricsConsistent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frost_risk",
			Name:      "summary_metrics_consistent",
			Help:      "1 when the stated summary document reconciles with the table, 0 otherwise.",
		}),
		MapAssetPresent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frost_risk",
			Name:      "map_asset_present",
			Help:      "1 when the optional static map image was found, 0 otherwise.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frost_risk",
			Name:      "queries_total",
			Help:      "Analytics queries served by endpoint.",
		}, []string{"endpoint"}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frost_risk",
			Name:      "export_duration_seconds",
			Help:      "Duration of export rendering (CSV, XLSX, JSON).",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ReloadEventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frost_risk",
			Name:      "reload_events_published_total",
			Help:      "Dataset reload notifications published to Kafka.",
		}),
		ReloadPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frost_risk",
			Name:      "reload_publish_errors_total",
			Help:      "Failed attempts to publish a reload notification.",
		}),
	}
}
