// Package metrics provides Prometheus metrics for the survey loader and dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoadRunsTotal counts loader runs by outcome.
	LoadRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "load_runs_total",
			Help:      "Total number of survey load runs",
		},
		[]string{"status"},
	)

	// LoadDuration measures how long a full paginated load takes.
	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "survey",
			Name:      "load_duration_seconds",
			Help:      "Duration of survey load runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// PagesFetchedTotal counts fetched source pages.
	PagesFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "pages_fetched_total",
			Help:      "Total number of source pages fetched",
		},
	)

	// RecordsTotal counts records by what happened to them.
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "records_total",
			Help:      "Total number of survey records by outcome",
		},
		[]string{"outcome"},
	)

	// ReportBuildsTotal counts report builds by cache outcome.
	ReportBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "report_builds_total",
			Help:      "Total number of report builds",
		},
		[]string{"source"},
	)

	// ErrorsTotal counts errors by operation.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "survey",
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"operation"},
	)

	// LastSuccessfulLoad is the unix time of the last successful load.
	LastSuccessfulLoad = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "survey",
			Name:      "last_successful_load_timestamp_seconds",
			Help:      "Unix timestamp of the last successful load",
		},
	)
)

// RecordLoad records the outcome of a load run.
func RecordLoad(status string, pages, fetched, inserted int, seconds float64, finishedUnix float64) {
	LoadRunsTotal.WithLabelValues(status).Inc()
	LoadDuration.Observe(seconds)
	PagesFetchedTotal.Add(float64(pages))
	RecordsTotal.WithLabelValues("fetched").Add(float64(fetched))
	RecordsTotal.WithLabelValues("inserted").Add(float64(inserted))
	RecordsTotal.WithLabelValues("duplicate").Add(float64(fetched - inserted))
	if status == "ok" {
		LastSuccessfulLoad.Set(finishedUnix)
	}
}

// RecordReportBuild records whether a report came from the cache or was rebuilt.
func RecordReportBuild(source string) {
	ReportBuildsTotal.WithLabelValues(source).Inc()
}

// RecordError records an error.
func RecordError(operation string) {
	ErrorsTotal.WithLabelValues(operation).Inc()
}
