// Package repository declares the persistence ports the usecases depend on.
package repository

import (
	"context"
	"errors"
	"time"

	"condo-radar/internal/domain/entity"
)

// ErrStoreUnavailable wraps failures where the store itself could not accept
// the batch, as opposed to individual rows being duplicates.
var ErrStoreUnavailable = errors.New("document store unavailable")

// BulkInsertResult reports the exact outcome of a duplicate-tolerant batch.
// Inserted + Duplicated always equals the number of documents submitted.
type BulkInsertResult struct {
	Inserted   int64
	Duplicated int64
}

// DocumentRepository persists classified documents.
type DocumentRepository interface {
	// BulkInsert writes docs in one statement. Rows whose link already
	// exists are counted as duplicates, never as errors; an empty batch
	// returns a zero result without touching the store.
	BulkInsert(ctx context.Context, source entity.Source, docs []*entity.Document, scrapedAt time.Time) (BulkInsertResult, error)

	// Ping verifies the store is reachable before a run starts.
	Ping(ctx context.Context) error
}
