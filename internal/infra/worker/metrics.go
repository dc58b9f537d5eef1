package worker

import (
	"condo-radar/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the worker component. It
// embeds ConfigMetrics for configuration fallback tracking and adds run
// execution metrics.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts scheduled run executions by status.
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures wall-clock run duration.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobDocumentsPersistedTotal counts documents persisted across runs.
	CronJobDocumentsPersistedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the Unix time of the last
	// successful run. Alerting keys off this going stale.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates all worker metrics. Registration happens via
// promauto at construction.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobDocumentsPersistedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_documents_persisted_total",
			Help: "Total number of documents persisted across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// MustRegister is a no-op kept for the conventional init pattern; promauto
// already registered everything in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {}

// RecordJobRun increments the run counter for "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordDocumentsPersisted adds this run's persisted document count.
func (m *WorkerMetrics) RecordDocumentsPersisted(count int64) {
	m.CronJobDocumentsPersistedTotal.Add(float64(count))
}

// RecordLastSuccess stamps the last successful run gauge with the current time.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
