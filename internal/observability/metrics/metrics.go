package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "greenledger_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	extractionTotal   *prometheus.CounterVec
	extractionLatency *prometheus.HistogramVec

	rowsMerged   prometheus.Counter
	rowsRejected prometheus.Counter

	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec
)

// Init registers pipeline metrics.
func Init() {
	registerOnce.Do(func() {
		extractionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "extraction_total",
				Help: "Total source extractions by kind and result",
			},
			[]string{"kind", "result"},
		)
		extractionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "extraction_latency_seconds",
				Help:    "Source extraction latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		rowsMerged = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_rows_merged_total",
				Help: "Total rows merged into ledgers",
			},
		)
		rowsRejected = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_rows_rejected_total",
				Help: "Total candidate rows rejected during normalization",
			},
		)

		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_total",
				Help: "Total report generations by result",
			},
			[]string{"result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			extractionTotal,
			extractionLatency,
			rowsMerged,
			rowsRejected,
			reportTotal,
			reportLatency,
		)
	})
}

// ObserveExtraction records one source extraction.
func ObserveExtraction(kind, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if extractionTotal != nil {
		extractionTotal.WithLabelValues(kind, result).Inc()
	}
	if extractionLatency != nil {
		extractionLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// AddRowsMerged increments the merged-row counter.
func AddRowsMerged(count int) {
	if count <= 0 || rowsMerged == nil {
		return
	}
	rowsMerged.Add(float64(count))
}

// AddRowsRejected increments the rejected-row counter.
func AddRowsRejected(count int) {
	if count <= 0 || rowsRejected == nil {
		return
	}
	rowsRejected.Add(float64(count))
}

// ObserveReport records one report generation.
func ObserveReport(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportTotal != nil {
		reportTotal.WithLabelValues(result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
