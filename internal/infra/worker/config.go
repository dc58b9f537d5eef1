package worker

import (
	"fmt"
	"log/slog"
	"time"

	"condo-radar/internal/pkg/config"
)

// WorkerConfig holds the operational configuration for the worker process:
// cron schedule, timezone, run timeout, notification concurrency and the
// health endpoint port.
//
// Loading is fail-open: an invalid environment value falls back to its
// default with a warning and a metric, never a startup failure. A scraper
// that refuses to start because someone fat-fingered a cron expression
// collects nothing at all.
type WorkerConfig struct {
	// CronSchedule is the cron expression for scheduled ingestion runs.
	// Format: "minute hour day month weekday"
	// Default: "0 6 * * *" (daily at 06:00)
	CronSchedule string

	// Timezone is the IANA timezone name used by the cron scheduler.
	// Default: "America/Toronto"
	Timezone string

	// RunOnce makes the worker execute a single ingestion run and exit
	// instead of starting the scheduler. Used for manual runs and CI.
	// Default: false
	RunOnce bool

	// NotifyMaxConcurrent bounds concurrent notification deliveries.
	// Range: 1-50. Default: 10
	NotifyMaxConcurrent int

	// IngestTimeout is the maximum duration for one ingestion run.
	// Default: 30 minutes
	IngestTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091
	HealthPort int

	// RulesFile is an optional YAML file merged over the built-in rules.
	// Empty means built-in rules only.
	RulesFile string
}

// DefaultConfig returns production-ready worker defaults: a daily morning
// run in the monitored region's timezone with a 30-minute ceiling.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:        "0 6 * * *",
		Timezone:            "America/Toronto",
		RunOnce:             false,
		NotifyMaxConcurrent: 10,
		IngestTimeout:       30 * time.Minute,
		HealthPort:          9091,
	}
}

// Validate checks every field and returns the aggregated failures.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.IngestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("ingest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with per-field validation and fallback to defaults.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default: "0 6 * * *")
//   - WORKER_TIMEZONE: IANA timezone (default: "America/Toronto")
//   - RUN_ONCE: "true" for a single run (default: false)
//   - NOTIFY_MAX_CONCURRENT: integer 1-50 (default: 10)
//   - INGEST_TIMEOUT: duration string, e.g. "30m" (default: 30m)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - RULES_FILE: path to a YAML rules override (default: unset)
//
// The returned config is always valid; the error is always nil and exists
// for signature symmetry with stricter loaders.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	apply := func(field string, result config.EnvLoadResult) config.EnvLoadResult {
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	result := apply("cron_schedule", config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.CronSchedule = result.Value.(string)

	result = apply("timezone", config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.Timezone = result.Value.(string)

	result = apply("notify_max_concurrent", config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	}))
	cfg.NotifyMaxConcurrent = result.Value.(int)

	result = apply("ingest_timeout", config.LoadEnvDuration("INGEST_TIMEOUT", cfg.IngestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	}))
	cfg.IngestTimeout = result.Value.(time.Duration)

	result = apply("health_port", config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	}))
	cfg.HealthPort = result.Value.(int)

	cfg.RunOnce = config.GetEnvBool("RUN_ONCE", cfg.RunOnce)
	cfg.RulesFile = config.GetEnvString("RULES_FILE", cfg.RulesFile)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
