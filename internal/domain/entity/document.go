// Package entity defines the core domain types for the monitoring pipeline:
// raw source records, normalized documents, and the ingestion metadata that
// accompanies a document into the store.
package entity

import "time"

// Source identifies the kind of origin a document was collected from.
type Source string

const (
	// SourceForum is the discussion-forum adapter (subreddit listings).
	SourceForum Source = "forum"

	// SourceBulletin is the scanned-bulletin adapter (PDF issues).
	SourceBulletin Source = "bulletin"
)

// Valid reports whether s is one of the known source identifiers.
func (s Source) Valid() bool {
	return s == SourceForum || s == SourceBulletin
}

// ProcessingStatus tracks a persisted record through downstream consumption.
// This pipeline only ever writes StatusPending; later stages compare-and-set.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusProcessed ProcessingStatus = "processed"
	StatusFailed    ProcessingStatus = "failed"
)

// RawRecord is a source-provided candidate document before normalization.
// It is ephemeral: adapters produce it, the pipeline consumes it once.
//
// Timestamp sources are carried in priority order: PublishedAt (structured,
// adapter already resolved it), EpochSeconds, DateText. The title itself and
// the link are additional last-resort date sources handled by the normalizer.
type RawRecord struct {
	Title        string
	Body         string
	Link         string
	PublishedAt  *time.Time
	EpochSeconds *int64
	DateText     string

	// Metadata is source-specific passthrough (subreddit, upvotes, comment
	// count). The pipeline never inspects it.
	Metadata map[string]any
}

// Document is the normalized unit the filter pipeline operates on.
//
// Invariants: PublishedAt is always resolved (a record whose date cannot be
// normalized is dropped before a Document exists) and Tags is non-empty for
// every document handed to the sink (tag order is keyword-list order).
type Document struct {
	Title       string
	Body        string
	Link        string
	PublishedAt time.Time
	Source      Source
	Tags        []string
	Metadata    map[string]any
}

// Validate checks the invariants a Document must satisfy before persistence.
func (d *Document) Validate() error {
	if d.Title == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if d.PublishedAt.IsZero() {
		return ErrMissingPublishedAt
	}
	if len(d.Tags) == 0 {
		return ErrNoMatchedTags
	}
	if !d.Source.Valid() {
		return &ValidationError{Field: "source", Message: "unknown source identifier"}
	}
	return nil
}

// PersistedRecord is a Document plus the ingestion metadata the sink
// attaches at write time. It is durable and never deleted by this pipeline.
type PersistedRecord struct {
	Document

	ScrapedAt   time.Time
	Status      ProcessingStatus
	ProcessedAt *time.Time
}
