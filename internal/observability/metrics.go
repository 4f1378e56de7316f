package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alignment pipeline.
type Metrics struct {
	RowsExtracted  prometheus.Counter
	RecordsWritten *prometheus.CounterVec // labels: table={event,occurrence,emof}
	RunActive      prometheus.Gauge
	RunDuration    prometheus.Histogram

	// Name-resolver metrics.
	ResolverRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ResolverUnmatched   prometheus.Counter
	ResolverCache       *prometheus.CounterVec // labels: tier={memory,store}, result={hit,miss}
	ResolverAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwc_align",
			Name:      "rows_extracted_total",
			Help:      "Total survey rows read from the input file.",
		}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwc_align",
			Name:      "records_written_total",
			Help:      "Aligned records written, by output table.",
		}, []string{"table"}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dwc_align",
			Name:      "run_active",
			Help:      "1 while an alignment run is in flight, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwc_align",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-align-enrich-write run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ResolverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwc_align",
			Name:      "resolver_requests_total",
			Help:      "Taxonomic authority requests by outcome.",
		}, []string{"outcome"}),
		ResolverUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwc_align",
			Name:      "resolver_unmatched_total",
			Help:      "Distinct scientific names the authority could not match.",
		}),
		ResolverCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwc_align",
			Name:      "resolver_cache_total",
			Help:      "Resolver cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		ResolverAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwc_align",
			Name:      "resolver_api_duration_seconds",
			Help:      "Authority request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.RowsExtracted,
		m.RecordsWritten,
		m.RunActive,
		m.RunDuration,
		m.ResolverRequests,
		m.ResolverUnmatched,
		m.ResolverCache,
		m.ResolverAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsExtracted:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dwc_align", Name: "rows_extracted_total"}),
		RecordsWritten:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dwc_align", Name: "records_written_total"}, []string{"table"}),
		RunActive:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "dwc_align", Name: "run_active"}),
		RunDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dwc_align", Name: "run_duration_seconds"}),
		ResolverRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dwc_align", Name: "resolver_requests_total"}, []string{"outcome"}),
		ResolverUnmatched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "dwc_align", Name: "resolver_unmatched_total"}),
		ResolverCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "dwc_align", Name: "resolver_cache_total"}, []string{"tier", "result"}),
		ResolverAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "dwc_align", Name: "resolver_api_duration_seconds"}),
	}
}
