package window

import (
	"testing"
	"time"
)

func TestPolicyInWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(start, now, DefaultHorizon)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"ten days old", now.AddDate(0, 0, -10), true},
		{"exactly now", now, true},
		{"exactly thirty days old", now.Add(-DefaultHorizon), true},
		{"nanosecond beyond horizon", now.Add(-DefaultHorizon).Add(-time.Nanosecond), false},
		{"nanosecond in future", now.Add(time.Nanosecond), false},
		{"before campaign start", start.Add(-time.Hour), false},
		{"far past", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.InWindow(tt.t); got != tt.want {
				t.Errorf("InWindow(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestPolicyCampaignStartInsideHorizon(t *testing.T) {
	// When the campaign started less than horizon ago the absolute lower
	// bound dominates; the start instant itself is still admissible.
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -5)
	p := New(start, now, DefaultHorizon)

	if !p.InWindow(start) {
		t.Error("campaign start instant should be inclusive")
	}
	if p.InWindow(start.Add(-time.Second)) {
		t.Error("instant before campaign start must be rejected")
	}
}

func TestPolicyDefaultHorizonFallback(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	p := New(now.AddDate(-1, 0, 0), now, 0)

	if p.InWindow(now.AddDate(0, 0, -31)) {
		t.Error("zero horizon should fall back to the 30-day default")
	}
	if !p.InWindow(now.AddDate(0, 0, -29)) {
		t.Error("29-day-old instant should pass under the default horizon")
	}
}
