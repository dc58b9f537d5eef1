package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"condo-radar/internal/pkg/config"
)

func TestLoadEnvWithFallback(t *testing.T) {
	noFail := func(string) error { return nil }

	t.Run("unset uses default without fallback flag", func(t *testing.T) {
		res := config.LoadEnvWithFallback("CONDO_RADAR_TEST_UNSET", "default", noFail)
		assert.Equal(t, "default", res.Value)
		assert.False(t, res.FallbackApplied)
	})

	t.Run("valid value passes through", func(t *testing.T) {
		t.Setenv("CONDO_RADAR_TEST_STR", "custom")
		res := config.LoadEnvWithFallback("CONDO_RADAR_TEST_STR", "default", noFail)
		assert.Equal(t, "custom", res.Value)
		assert.False(t, res.FallbackApplied)
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("CONDO_RADAR_TEST_STR", "bad")
		res := config.LoadEnvWithFallback("CONDO_RADAR_TEST_STR", "default", config.ValidateCronSchedule)
		assert.Equal(t, "default", res.Value)
		assert.True(t, res.FallbackApplied)
		assert.NotEmpty(t, res.Warnings)
	})
}

func TestLoadEnvInt(t *testing.T) {
	inRange := func(v int) error { return config.ValidateIntRange(v, 1, 100) }

	t.Run("parse failure falls back", func(t *testing.T) {
		t.Setenv("CONDO_RADAR_TEST_INT", "ten")
		res := config.LoadEnvInt("CONDO_RADAR_TEST_INT", 10, inRange)
		assert.Equal(t, 10, res.Value)
		assert.True(t, res.FallbackApplied)
	})

	t.Run("out of range falls back", func(t *testing.T) {
		t.Setenv("CONDO_RADAR_TEST_INT", "500")
		res := config.LoadEnvInt("CONDO_RADAR_TEST_INT", 10, inRange)
		assert.Equal(t, 10, res.Value)
		assert.True(t, res.FallbackApplied)
	})

	t.Run("valid value passes through", func(t *testing.T) {
		t.Setenv("CONDO_RADAR_TEST_INT", "42")
		res := config.LoadEnvInt("CONDO_RADAR_TEST_INT", 10, inRange)
		assert.Equal(t, 42, res.Value)
		assert.False(t, res.FallbackApplied)
	})
}

func TestLoadEnvDuration(t *testing.T) {
	bounded := func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	}

	t.Run("valid duration passes through", func(t *testing.T) {
		t.Setenv("CONDO_RADAR_TEST_DUR", "90m")
		res := config.LoadEnvDuration("CONDO_RADAR_TEST_DUR", 30*time.Minute, bounded)
		assert.Equal(t, 90*time.Minute, res.Value)
		assert.False(t, res.FallbackApplied)
	})

	t.Run("garbage falls back", func(t *testing.T) {
		t.Setenv("CONDO_RADAR_TEST_DUR", "soon")
		res := config.LoadEnvDuration("CONDO_RADAR_TEST_DUR", 30*time.Minute, bounded)
		assert.Equal(t, 30*time.Minute, res.Value)
		assert.True(t, res.FallbackApplied)
	})
}

func TestValidators(t *testing.T) {
	assert.NoError(t, config.ValidateCronSchedule("30 5 * * *"))
	assert.Error(t, config.ValidateCronSchedule("not a schedule"))
	assert.Error(t, config.ValidateCronSchedule(""))

	assert.NoError(t, config.ValidateTimezone("UTC"))
	assert.NoError(t, config.ValidateTimezone("America/Toronto"))
	assert.Error(t, config.ValidateTimezone("Mars/Olympus"))

	assert.NoError(t, config.ValidateIntRange(5, 1, 10))
	assert.Error(t, config.ValidateIntRange(0, 1, 10))

	assert.NoError(t, config.ValidatePositiveDuration(time.Second))
	assert.Error(t, config.ValidatePositiveDuration(0))

	assert.NoError(t, config.ValidateYearRange(2020, 2030))
	assert.Error(t, config.ValidateYearRange(2030, 2020))
}
