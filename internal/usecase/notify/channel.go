// Package notify dispatches run summaries to delivery channels. Dispatch is
// asynchronous with a bounded worker pool, per-channel circuit breaking and
// panic isolation, so a broken webhook can never take down the worker.
package notify

import "context"

// Channel is one delivery target for run summaries.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation. Rate limiting and transport-level retries are the channel's
// own business; the service only tracks consecutive failures.
type Channel interface {
	// Name identifies the channel in logs and metrics (lowercase).
	Name() string

	// IsEnabled reports whether the channel is configured for delivery.
	// Disabled channels are skipped during dispatch.
	IsEnabled() bool

	// Send delivers the summary. The context carries a request_id value
	// for tracing and a per-notification timeout.
	Send(ctx context.Context, summary *RunSummary) error
}
