package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send() was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidSummary indicates a nil or empty run summary.
	ErrInvalidSummary = errors.New("invalid run summary")

	// ErrNotificationDropped indicates that a notification was dropped due to
	// worker pool saturation. Non-critical, used for observability.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")

	// ErrCircuitBreakerOpen indicates that the channel is temporarily disabled
	// after repeated consecutive failures.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")
)
