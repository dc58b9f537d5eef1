package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvLoadResult reports the outcome of loading one configuration field from
// the environment under the fail-open strategy: the effective value, whether
// the default was substituted, and human-readable warnings for the log.
type EnvLoadResult struct {
	Value           any
	FallbackApplied bool
	Warnings        []string
}

// LoadEnvWithFallback loads a string field. If the variable is set but fails
// validation, the default is used and the failure is reported as a warning —
// the worker must come up even with broken configuration.
func LoadEnvWithFallback(key, defaultValue string, validate func(string) error) EnvLoadResult {
	value := os.Getenv(key)
	if value == "" {
		return EnvLoadResult{Value: defaultValue}
	}

	if err := validate(value); err != nil {
		return EnvLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings: []string{
				fmt.Sprintf("%s=%q rejected (%v), using default %q", key, value, err, defaultValue),
			},
		}
	}
	return EnvLoadResult{Value: value}
}

// LoadEnvInt loads an integer field with the same fail-open semantics.
func LoadEnvInt(key string, defaultValue int, validate func(int) error) EnvLoadResult {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return EnvLoadResult{Value: defaultValue}
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return EnvLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings: []string{
				fmt.Sprintf("%s=%q is not an integer, using default %d", key, valueStr, defaultValue),
			},
		}
	}

	if err := validate(value); err != nil {
		return EnvLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings: []string{
				fmt.Sprintf("%s=%d rejected (%v), using default %d", key, value, err, defaultValue),
			},
		}
	}
	return EnvLoadResult{Value: value}
}

// LoadEnvDuration loads a time.Duration field with the same fail-open
// semantics. Values must be parseable by time.ParseDuration.
func LoadEnvDuration(key string, defaultValue time.Duration, validate func(time.Duration) error) EnvLoadResult {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return EnvLoadResult{Value: defaultValue}
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return EnvLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings: []string{
				fmt.Sprintf("%s=%q is not a duration, using default %s", key, valueStr, defaultValue),
			},
		}
	}

	if err := validate(value); err != nil {
		return EnvLoadResult{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings: []string{
				fmt.Sprintf("%s=%s rejected (%v), using default %s", key, value, err, defaultValue),
			},
		}
	}
	return EnvLoadResult{Value: value}
}
