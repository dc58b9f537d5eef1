package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level invariant violations.
var (
	// ErrMissingPublishedAt indicates a document was constructed without a
	// resolved publish instant. This must never reach the store.
	ErrMissingPublishedAt = errors.New("document has no resolved publish date")

	// ErrNoMatchedTags indicates a document carries no matched topic tags.
	// An empty tag set means rejection upstream, not an empty-tagged save.
	ErrNoMatchedTags = errors.New("document has no matched tags")
)

// ValidationError reports which document field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
