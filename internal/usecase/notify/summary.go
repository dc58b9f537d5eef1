package notify

import (
	"fmt"
	"strings"
	"time"
)

// SourceResult is the per-source slice of a run summary.
type SourceResult struct {
	Source             string
	Listed             int
	Inserted           int64
	Duplicated         int64
	DroppedNoDate      int
	DroppedOutOfWindow int
	DroppedIrrelevant  int
	Failed             bool
	Error              string
}

// RunSummary is what gets delivered after an ingestion run finishes.
// Success mirrors the run's outcome: at least one new document persisted.
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Sources    []SourceResult
}

// Subject renders the one-line headline, e.g.
// "[condo-radar SUCCESS] forum: 12 | bulletin: 2".
// The per-source numbers are newly inserted documents.
func (s *RunSummary) Subject() string {
	outcome := "FAILURE"
	if s.Success {
		outcome = "SUCCESS"
	}
	parts := make([]string, 0, len(s.Sources))
	for _, src := range s.Sources {
		parts = append(parts, fmt.Sprintf("%s: %d", src.Source, src.Inserted))
	}
	return fmt.Sprintf("[condo-radar %s] %s", outcome, strings.Join(parts, " | "))
}

// Body renders the multi-line report with per-source counts and drop
// breakdowns.
func (s *RunSummary) Body() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ingestion run %s\n", map[bool]string{true: "succeeded", false: "failed"}[s.Success])
	fmt.Fprintf(&sb, "Started:  %s\n", s.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Finished: %s\n", s.FinishedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))

	for _, src := range s.Sources {
		fmt.Fprintf(&sb, "\n%s:\n", src.Source)
		if src.Failed {
			fmt.Fprintf(&sb, "  FAILED: %s\n", src.Error)
			continue
		}
		fmt.Fprintf(&sb, "  listed:     %d\n", src.Listed)
		fmt.Fprintf(&sb, "  inserted:   %d\n", src.Inserted)
		fmt.Fprintf(&sb, "  duplicated: %d\n", src.Duplicated)
		fmt.Fprintf(&sb, "  dropped:    %d no-date, %d out-of-window, %d irrelevant\n",
			src.DroppedNoDate, src.DroppedOutOfWindow, src.DroppedIrrelevant)
	}
	return sb.String()
}
