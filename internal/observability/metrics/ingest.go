// Package metrics holds the worker's business metrics. Everything registers
// on the default registry and is served by the worker's /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons used as metric label values.
const (
	DropNoDate      = "no_date"
	DropOutOfWindow = "out_of_window"
	DropIrrelevant  = "irrelevant"
)

var (
	recordsListedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_listed_total",
			Help: "Raw records returned by source listings",
		},
		[]string{"source"},
	)

	recordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_dropped_total",
			Help: "Records dropped before persistence",
		},
		[]string{"source", "reason"}, // reason: no_date|out_of_window|irrelevant
	)

	documentsInsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_documents_inserted_total",
			Help: "Documents newly persisted",
		},
		[]string{"source"},
	)

	documentsDuplicatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_documents_duplicated_total",
			Help: "Documents skipped as already persisted",
		},
		[]string{"source"},
	)

	sourceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_source_failures_total",
			Help: "Source listings that failed entirely",
		},
		[]string{"source"},
	)

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Completed ingestion runs",
		},
		[]string{"status"}, // status: success|failure
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Wall-clock duration of a full ingestion run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

func RecordListed(source string, n int) {
	recordsListedTotal.WithLabelValues(source).Add(float64(n))
}

func RecordDropped(source, reason string) {
	recordsDroppedTotal.WithLabelValues(source, reason).Inc()
}

func RecordPersisted(source string, inserted, duplicated int64) {
	documentsInsertedTotal.WithLabelValues(source).Add(float64(inserted))
	documentsDuplicatedTotal.WithLabelValues(source).Add(float64(duplicated))
}

func RecordSourceFailure(source string) {
	sourceFailuresTotal.WithLabelValues(source).Inc()
}

func RecordRun(success bool, d time.Duration) {
	status := "failure"
	if success {
		status = "success"
	}
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(d.Seconds())
}
