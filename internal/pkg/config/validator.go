package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a five-field cron expression using the same
// parser the scheduler runs with, so anything accepted here will schedule.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidateTimezone validates an IANA timezone name by attempting to load it.
// Fails if the system lacks tzdata for the name.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}
	return nil
}

// ValidateIntRange checks that value lies in [minVal, maxVal] inclusive.
func ValidateIntRange(value, minVal, maxVal int) error {
	if value < minVal || value > maxVal {
		return fmt.Errorf("value %d out of range [%d, %d]", value, minVal, maxVal)
	}
	return nil
}

// ValidatePositiveDuration checks that d is strictly positive.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

// ValidateDuration checks that d lies in [minDur, maxDur] inclusive.
func ValidateDuration(d, minDur, maxDur time.Duration) error {
	if d < minDur || d > maxDur {
		return fmt.Errorf("duration %s out of range [%s, %s]", d, minDur, maxDur)
	}
	return nil
}

// ValidateYearRange checks that a [min, max] plausible-year pair is sane.
func ValidateYearRange(minYear, maxYear int) error {
	if minYear < 1970 || maxYear > 9999 || minYear > maxYear {
		return fmt.Errorf("invalid year range [%d, %d]", minYear, maxYear)
	}
	return nil
}
