// Package ingest orchestrates one end-to-end collection run: list every
// source, resolve each record's publish date, filter by time window and
// relevance, and persist what survives. One bad record drops that record,
// one dead source drops that source; neither sinks the run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"condo-radar/internal/config"
	"condo-radar/internal/domain/entity"
	"condo-radar/internal/observability/metrics"
	"condo-radar/internal/observability/tracing"
	"condo-radar/internal/pkg/datenorm"
	"condo-radar/internal/pkg/window"
	"condo-radar/internal/repository"
	"condo-radar/internal/usecase/notify"
)

// normalizeParallelism bounds concurrent date resolution per source. The
// remote-metadata fallback does network I/O, so this is an I/O ceiling, not
// a CPU one.
const normalizeParallelism = 8

// SourceAdapter lists raw records from one origin.
type SourceAdapter interface {
	Source() entity.Source
	List(ctx context.Context) ([]*entity.RawRecord, error)
}

// DateResolver resolves a record's publish instant.
type DateResolver interface {
	Resolve(ctx context.Context, rec *entity.RawRecord) (time.Time, error)
}

// Classifier decides relevance and produces tags.
type Classifier interface {
	Classify(title, body string, keywords []string) (bool, []string)
}

// Service runs the ingestion pipeline across all configured sources.
type Service struct {
	Adapters   []SourceAdapter
	Resolver   DateResolver
	Classifier Classifier
	Repo       repository.DocumentRepository
	Notify     notify.Service
	Rules      config.Rules
}

// SourceStats is the per-source outcome of a run.
type SourceStats struct {
	Source             entity.Source
	Listed             int
	DroppedNoDate      int
	DroppedOutOfWindow int
	DroppedIrrelevant  int
	Inserted           int64
	Duplicated         int64
	Failed             bool
	Err                string
}

// RunStats is the outcome of one full run.
type RunStats struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Sources    []SourceStats
}

// TotalInserted sums newly persisted documents across sources.
func (s *RunStats) TotalInserted() int64 {
	var total int64
	for _, src := range s.Sources {
		total += src.Inserted
	}
	return total
}

// Run executes one collection pass. The reference instant is captured once
// at the start so every record is judged against identical window bounds.
// Run succeeds iff at least one new document was persisted; otherwise it
// returns the stats together with ErrNoDocumentsPersisted (or the store
// error when the preflight ping failed).
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	runID := uuid.New().String()
	logger := slog.Default().With(slog.String("run_id", runID))
	now := time.Now().UTC()
	stats := &RunStats{StartedAt: now}

	ctx, span := tracing.GetTracer().Start(ctx, "ingest.run")
	span.SetAttributes(attribute.String("run.id", runID))
	defer span.End()

	if err := s.Repo.Ping(ctx); err != nil {
		stats.FinishedAt = time.Now().UTC()
		metrics.RecordRun(false, stats.FinishedAt.Sub(stats.StartedAt))
		return stats, fmt.Errorf("store preflight: %w", err)
	}

	policy := window.New(s.Rules.CampaignStart, now, s.Rules.Horizon())

	failedSources := 0
	for _, adapter := range s.Adapters {
		srcStats := s.runSource(ctx, adapter, policy, now)
		if srcStats.Failed {
			failedSources++
		}
		stats.Sources = append(stats.Sources, srcStats)
	}

	stats.FinishedAt = time.Now().UTC()
	stats.Success = stats.TotalInserted() > 0
	metrics.RecordRun(stats.Success, stats.FinishedAt.Sub(stats.StartedAt))
	span.SetAttributes(
		attribute.Bool("run.success", stats.Success),
		attribute.Int64("run.inserted", stats.TotalInserted()),
	)

	logger.Info("ingestion run completed",
		slog.Bool("success", stats.Success),
		slog.Int64("inserted", stats.TotalInserted()),
		slog.Int("failed_sources", failedSources),
		slog.Duration("duration", stats.FinishedAt.Sub(stats.StartedAt)),
	)

	s.dispatchSummary(ctx, stats)

	if !stats.Success {
		if failedSources == len(s.Adapters) && len(s.Adapters) > 0 {
			return stats, ErrAllSourcesFailed
		}
		return stats, ErrNoDocumentsPersisted
	}
	return stats, nil
}

// runSource lists one source and pushes its records through the pipeline.
// A listing failure marks the source failed and returns; it never bubbles
// up as a run error on its own.
func (s *Service) runSource(ctx context.Context, adapter SourceAdapter, policy window.Policy, now time.Time) SourceStats {
	logger := slog.Default()
	source := adapter.Source()
	srcStats := SourceStats{Source: source}

	ctx, span := tracing.GetTracer().Start(ctx, "ingest.source")
	span.SetAttributes(attribute.String("source", string(source)))
	defer span.End()

	start := time.Now()
	records, err := adapter.List(ctx)
	if err != nil {
		logger.Warn("source listing failed",
			slog.String("source", string(source)),
			slog.Any("error", err))
		metrics.RecordSourceFailure(string(source))
		srcStats.Failed = true
		srcStats.Err = err.Error()
		return srcStats
	}
	srcStats.Listed = len(records)
	metrics.RecordListed(string(source), len(records))

	docs := s.filterRecords(ctx, source, records, policy, &srcStats)

	result, err := s.Repo.BulkInsert(ctx, source, docs, now)
	if err != nil {
		logger.Error("bulk insert failed",
			slog.String("source", string(source)),
			slog.Int("documents", len(docs)),
			slog.Any("error", err))
		srcStats.Failed = true
		srcStats.Err = err.Error()
		return srcStats
	}
	srcStats.Inserted = result.Inserted
	srcStats.Duplicated = result.Duplicated
	metrics.RecordPersisted(string(source), result.Inserted, result.Duplicated)

	logger.Info("source ingested",
		slog.String("source", string(source)),
		slog.Int("listed", srcStats.Listed),
		slog.Int64("inserted", srcStats.Inserted),
		slog.Int64("duplicated", srcStats.Duplicated),
		slog.Int("dropped_no_date", srcStats.DroppedNoDate),
		slog.Int("dropped_out_of_window", srcStats.DroppedOutOfWindow),
		slog.Int("dropped_irrelevant", srcStats.DroppedIrrelevant),
		slog.Duration("duration", time.Since(start)),
	)
	return srcStats
}

// filterRecords runs date resolution, window filtering and classification
// over the listing. Date resolution runs in parallel because the remote
// metadata fallback is network-bound; classification is cheap and happens
// inline. Context cancellation is the only error that aborts the batch.
func (s *Service) filterRecords(ctx context.Context, source entity.Source, records []*entity.RawRecord, policy window.Policy, srcStats *SourceStats) []*entity.Document {
	logger := slog.Default()
	keywords := s.keywordsFor(source)

	var mu sync.Mutex
	var docs []*entity.Document

	sem := make(chan struct{}, normalizeParallelism)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, record := range records {
		rec := record
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			publishedAt, err := s.Resolver.Resolve(egCtx, rec)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.Debug("record dropped: no resolvable date",
					slog.String("source", string(source)),
					slog.String("title", rec.Title))
				metrics.RecordDropped(string(source), metrics.DropNoDate)
				mu.Lock()
				srcStats.DroppedNoDate++
				mu.Unlock()
				return nil
			}

			if !policy.InWindow(publishedAt) {
				metrics.RecordDropped(string(source), metrics.DropOutOfWindow)
				mu.Lock()
				srcStats.DroppedOutOfWindow++
				mu.Unlock()
				return nil
			}

			relevant, tags := s.Classifier.Classify(rec.Title, rec.Body, keywords)
			if !relevant {
				metrics.RecordDropped(string(source), metrics.DropIrrelevant)
				mu.Lock()
				srcStats.DroppedIrrelevant++
				mu.Unlock()
				return nil
			}

			doc := &entity.Document{
				Title:       rec.Title,
				Body:        rec.Body,
				Link:        rec.Link,
				PublishedAt: publishedAt,
				Source:      source,
				Tags:        tags,
				Metadata:    rec.Metadata,
			}
			if err := doc.Validate(); err != nil {
				logger.Warn("record dropped: document invalid",
					slog.String("source", string(source)),
					slog.String("title", rec.Title),
					slog.Any("error", err))
				metrics.RecordDropped(string(source), metrics.DropIrrelevant)
				mu.Lock()
				srcStats.DroppedIrrelevant++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			docs = append(docs, doc)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		logger.Warn("record filtering aborted",
			slog.String("source", string(source)),
			slog.Any("error", err))
	}
	return docs
}

func (s *Service) keywordsFor(source entity.Source) []string {
	switch source {
	case entity.SourceBulletin:
		return s.Rules.BulletinKeywords()
	default:
		return s.Rules.ForumKeywords()
	}
}

// dispatchSummary converts the stats into a run summary and hands it to the
// notification service. Fire-and-forget: delivery failures never affect the
// run result.
func (s *Service) dispatchSummary(ctx context.Context, stats *RunStats) {
	if s.Notify == nil {
		return
	}
	summary := &notify.RunSummary{
		StartedAt:  stats.StartedAt,
		FinishedAt: stats.FinishedAt,
		Success:    stats.Success,
		Sources:    make([]notify.SourceResult, 0, len(stats.Sources)),
	}
	for _, src := range stats.Sources {
		summary.Sources = append(summary.Sources, notify.SourceResult{
			Source:             string(src.Source),
			Listed:             src.Listed,
			Inserted:           src.Inserted,
			Duplicated:         src.Duplicated,
			DroppedNoDate:      src.DroppedNoDate,
			DroppedOutOfWindow: src.DroppedOutOfWindow,
			DroppedIrrelevant:  src.DroppedIrrelevant,
			Failed:             src.Failed,
			Error:              src.Err,
		})
	}
	_ = s.Notify.NotifyRunSummary(ctx, summary)
}

// Ensure the production resolver satisfies the interface.
var _ DateResolver = (*datenorm.Normalizer)(nil)
