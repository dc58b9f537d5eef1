package ingest

import "errors"

// Sentinel errors for ingest use case operations.
var (
	// ErrNoDocumentsPersisted indicates the run finished without persisting a
	// single new document: every source failed, or everything listed was
	// dropped or already known.
	ErrNoDocumentsPersisted = errors.New("run persisted no new documents")

	// ErrAllSourcesFailed indicates that no source produced a listing.
	ErrAllSourcesFailed = errors.New("all sources failed to list")
)
