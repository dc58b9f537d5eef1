// Package window decides whether a publish instant is admissible for the
// current run. Two independent tests must both pass: the absolute window
// [campaignStart, now] and the rolling recency window [now-horizon, now].
// Both intervals are inclusive at both ends.
package window

import "time"

// DefaultHorizon is the rolling recency window.
const DefaultHorizon = 30 * 24 * time.Hour

// Policy is the admissible publish-time interval for one pipeline run.
// The reference instant is captured once at construction so every record in
// a run is judged against the same bounds.
type Policy struct {
	campaignStart time.Time
	now           time.Time
	horizon       time.Duration
}

// New builds a policy anchored at now. campaignStart is the fixed program
// inception instant; documents published before it never qualify, which
// keeps a first run against a historical archive from ingesting a backlog.
func New(campaignStart, now time.Time, horizon time.Duration) Policy {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return Policy{
		campaignStart: campaignStart.UTC(),
		now:           now.UTC(),
		horizon:       horizon,
	}
}

// InWindow reports whether t falls inside both the absolute and the rolling
// window. Boundaries are inclusive: t == campaignStart, t == now and
// t == now-horizon all pass.
func (p Policy) InWindow(t time.Time) bool {
	t = t.UTC()
	if t.Before(p.campaignStart) || t.After(p.now) {
		return false
	}
	if t.Before(p.now.Add(-p.horizon)) {
		return false
	}
	return true
}

// Now returns the run's shared reference instant.
func (p Policy) Now() time.Time {
	return p.now
}
