// Package datenorm resolves a publish instant for a raw record by trying a
// fixed chain of strategies, cheapest first. The first strategy to produce a
// plausible instant wins; a record whose date cannot be resolved is never
// defaulted to the current time.
package datenorm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"condo-radar/internal/domain/entity"
)

// ErrUnresolved is returned when no strategy produced a plausible instant.
var ErrUnresolved = errors.New("datenorm: publish date unresolved")

// Fetcher retrieves a document body for the remote-metadata strategy.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Normalizer runs the strategy chain: structured timestamp, epoch seconds,
// free-text parse, title pattern scan, then remote page metadata. The remote
// strategy is skipped when no Fetcher is configured.
type Normalizer struct {
	minYear int
	maxYear int
	fetcher Fetcher
	logger  *slog.Logger
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithFetcher enables the remote-metadata fallback strategy.
func WithFetcher(f Fetcher) Option {
	return func(n *Normalizer) { n.fetcher = f }
}

// WithLogger sets the logger used for per-strategy debug output.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

// New builds a Normalizer. Instants outside [minYear, maxYear] are treated
// as parser garbage and the chain moves on to the next strategy.
func New(minYear, maxYear int, opts ...Option) *Normalizer {
	n := &Normalizer{
		minYear: minYear,
		maxYear: maxYear,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Resolve produces the publish instant for rec in UTC, or ErrUnresolved.
func (n *Normalizer) Resolve(ctx context.Context, rec *entity.RawRecord) (time.Time, error) {
	if rec.PublishedAt != nil {
		if t, ok := n.plausible(rec.PublishedAt.UTC()); ok {
			return t, nil
		}
	}

	if rec.EpochSeconds != nil {
		if t, ok := n.plausible(time.Unix(*rec.EpochSeconds, 0).UTC()); ok {
			return t, nil
		}
	}

	if text := strings.TrimSpace(rec.DateText); text != "" {
		if t, err := dateparse.ParseIn(text, time.UTC); err == nil {
			if t, ok := n.plausible(t.UTC()); ok {
				return t, nil
			}
		}
	}

	if t, ok := n.fromTitle(rec.Title); ok {
		return t, nil
	}

	if n.fetcher != nil && rec.Link != "" {
		if t, ok := n.fromRemoteMeta(ctx, rec.Link); ok {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnresolved, rec.Title)
}

// plausible rejects instants outside the configured year range.
func (n *Normalizer) plausible(t time.Time) (time.Time, bool) {
	y := t.Year()
	if y < n.minYear || y > n.maxYear {
		return time.Time{}, false
	}
	return t, true
}

func (n *Normalizer) fromRemoteMeta(ctx context.Context, url string) (time.Time, bool) {
	body, err := n.fetcher.Get(ctx, url)
	if err != nil {
		n.logger.Debug("remote metadata fetch failed", "url", url, "error", err)
		return time.Time{}, false
	}
	raw, ok := extractMetaDate(body)
	if !ok {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		n.logger.Debug("remote metadata unparsable", "url", url, "value", raw)
		return time.Time{}, false
	}
	return n.plausible(t.UTC())
}
