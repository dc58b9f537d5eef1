// Package source contains the listing adapters that collect raw records
// from the monitored origins.
package source

import "context"

// Fetcher is the outbound HTTP surface the adapters need.
type Fetcher interface {
	// GetListing fetches a listing endpoint with the patient retry schedule.
	GetListing(ctx context.Context, url string) ([]byte, error)

	// Download fetches a binary payload.
	Download(ctx context.Context, url string) ([]byte, error)
}
