// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal     *prometheus.CounterVec
	recordsExtractedTotal prometheus.Counter
	validationWarnsTotal  prometheus.Counter
	fetchDurationSeconds  prometheus.Histogram
	runsTotal             *prometheus.CounterVec

	once sync.Once
)

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_fetched_total",
				Help: "Pages fetched from the hub, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		recordsExtractedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_records_extracted_total",
				Help: "Records successfully extracted and stored.",
			},
		)
		validationWarnsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_validation_warnings_total",
				Help: "Records emitted despite failing schema validation.",
			},
		)
		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Latency of detail page fetches.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)
		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_runs_total",
				Help: "Batch runs, labeled by status.",
			},
			[]string{"status"},
		)
	})
}

// PageFetched counts one page fetch with its outcome ("ok" or "error").
func PageFetched(outcome string) {
	if pagesFetchedTotal != nil {
		pagesFetchedTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordExtracted counts one stored record.
func RecordExtracted() {
	if recordsExtractedTotal != nil {
		recordsExtractedTotal.Inc()
	}
}

// ValidationWarning counts one record that failed validation.
func ValidationWarning() {
	if validationWarnsTotal != nil {
		validationWarnsTotal.Inc()
	}
}

// ObserveFetchDuration records the latency of one fetch.
func ObserveFetchDuration(d time.Duration) {
	if fetchDurationSeconds != nil {
		fetchDurationSeconds.Observe(d.Seconds())
	}
}

// RunFinished counts a completed batch run ("ok" or "partial").
func RunFinished(status string) {
	if runsTotal != nil {
		runsTotal.WithLabelValues(status).Inc()
	}
}
