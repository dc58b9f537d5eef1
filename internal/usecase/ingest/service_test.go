package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condo-radar/internal/config"
	"condo-radar/internal/domain/entity"
	"condo-radar/internal/pkg/datenorm"
	"condo-radar/internal/pkg/relevance"
	"condo-radar/internal/repository"
)

/* ─────────────────────────── fakes ─────────────────────────── */

type fakeAdapter struct {
	source  entity.Source
	records []*entity.RawRecord
	err     error
}

func (a *fakeAdapter) Source() entity.Source { return a.source }
func (a *fakeAdapter) List(context.Context) ([]*entity.RawRecord, error) {
	return a.records, a.err
}

type fakeRepo struct {
	mu       sync.Mutex
	batches  map[entity.Source][]*entity.Document
	pingErr  error
	storeErr error
	// pretendDuplicates marks how many of each batch the store already has.
	pretendDuplicates int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{batches: make(map[entity.Source][]*entity.Document)}
}

func (r *fakeRepo) BulkInsert(_ context.Context, source entity.Source, docs []*entity.Document, _ time.Time) (repository.BulkInsertResult, error) {
	if r.storeErr != nil {
		return repository.BulkInsertResult{}, r.storeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[source] = append(r.batches[source], docs...)
	dup := r.pretendDuplicates
	if dup > int64(len(docs)) {
		dup = int64(len(docs))
	}
	return repository.BulkInsertResult{
		Inserted:   int64(len(docs)) - dup,
		Duplicated: dup,
	}, nil
}

func (r *fakeRepo) Ping(context.Context) error { return r.pingErr }

func testRules() config.Rules {
	r := config.DefaultRules()
	r.LocationTerms = []string{"toronto", "ontario"}
	r.StandardKeywords = []string{"reserve fund", "special assessment"}
	r.ForumExtraKeywords = nil
	r.BulletinExtraKeywords = []string{"cat"}
	r.FuzzyEnabled = false
	return r
}

func newService(repo *fakeRepo, rules config.Rules, adapters ...SourceAdapter) *Service {
	return &Service{
		Adapters:   adapters,
		Resolver:   datenorm.New(rules.MinYear, rules.MaxYear),
		Classifier: relevance.New(rules.LocationTerms, relevance.WithFuzzy(false, rules.FuzzyThreshold), relevance.WithMaxTags(rules.MaxTags)),
		Repo:       repo,
		Rules:      rules,
	}
}

func epochDaysAgo(days int) *int64 {
	e := time.Now().UTC().AddDate(0, 0, -days).Unix()
	return &e
}

/* ─────────────────────────── Run ─────────────────────────── */

func TestRunPersistsRelevantRecentRecord(t *testing.T) {
	adapter := &fakeAdapter{
		source: entity.SourceForum,
		records: []*entity.RawRecord{{
			Title:        "Toronto condo reserve fund shortfall",
			Body:         "The board is raising fees.",
			Link:         "https://reddit.test/r/toronto/1",
			EpochSeconds: epochDaysAgo(10),
			Metadata:     map[string]any{"score": 5},
		}},
	}
	repo := newFakeRepo()
	svc := newService(repo, testRules(), adapter)

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.Success)
	require.Len(t, stats.Sources, 1)
	assert.Equal(t, int64(1), stats.Sources[0].Inserted)

	saved := repo.batches[entity.SourceForum]
	require.Len(t, saved, 1)
	assert.Equal(t, []string{"reserve fund"}, saved[0].Tags)
	assert.Equal(t, entity.SourceForum, saved[0].Source)
	assert.False(t, saved[0].PublishedAt.IsZero())
}

func TestRunDropsUnresolvableDate(t *testing.T) {
	adapter := &fakeAdapter{
		source: entity.SourceBulletin,
		records: []*entity.RawRecord{{
			// Year pattern resolves to 1999, outside the plausible range,
			// so no strategy succeeds and the record is dropped.
			Title: "Toronto reserve fund retrospective 1999",
			Link:  "https://bulletins.test/1999.pdf",
		}},
	}
	repo := newFakeRepo()
	svc := newService(repo, testRules(), adapter)

	stats, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoDocumentsPersisted)
	assert.False(t, stats.Success)
	assert.Equal(t, 1, stats.Sources[0].DroppedNoDate)
	assert.Empty(t, repo.batches[entity.SourceBulletin])
}

func TestRunDropsOutOfWindowRecord(t *testing.T) {
	adapter := &fakeAdapter{
		source: entity.SourceForum,
		records: []*entity.RawRecord{{
			Title:        "Toronto special assessment story",
			EpochSeconds: epochDaysAgo(45), // resolvable but stale
			Link:         "https://reddit.test/r/toronto/2",
		}},
	}
	repo := newFakeRepo()
	svc := newService(repo, testRules(), adapter)

	stats, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoDocumentsPersisted)
	assert.Equal(t, 1, stats.Sources[0].DroppedOutOfWindow)
	assert.Empty(t, repo.batches[entity.SourceForum])
}

func TestRunDropsIrrelevantRecord(t *testing.T) {
	adapter := &fakeAdapter{
		source: entity.SourceForum,
		records: []*entity.RawRecord{
			{
				// No location anchor.
				Title:        "Reserve fund crisis somewhere",
				EpochSeconds: epochDaysAgo(3),
				Link:         "https://reddit.test/r/x/1",
			},
			{
				// Location but no keyword.
				Title:        "Nice weather in Toronto today",
				EpochSeconds: epochDaysAgo(3),
				Link:         "https://reddit.test/r/x/2",
			},
		},
	}
	repo := newFakeRepo()
	svc := newService(repo, testRules(), adapter)

	stats, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoDocumentsPersisted)
	assert.Equal(t, 2, stats.Sources[0].DroppedIrrelevant)
}

func TestRunIsolatesFailedSource(t *testing.T) {
	failing := &fakeAdapter{source: entity.SourceBulletin, err: errors.New("index unreachable")}
	healthy := &fakeAdapter{
		source: entity.SourceForum,
		records: []*entity.RawRecord{{
			Title:        "Ontario condo special assessment doubles",
			EpochSeconds: epochDaysAgo(1),
			Link:         "https://reddit.test/r/ontario/9",
		}},
	}
	repo := newFakeRepo()
	svc := newService(repo, testRules(), failing, healthy)

	stats, err := svc.Run(context.Background())
	require.NoError(t, err, "one dead source must not fail the run")
	assert.True(t, stats.Success)
	require.Len(t, stats.Sources, 2)
	assert.True(t, stats.Sources[0].Failed)
	assert.Equal(t, "index unreachable", stats.Sources[0].Err)
	assert.Equal(t, int64(1), stats.Sources[1].Inserted)
}

func TestRunAllSourcesFailed(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, testRules(),
		&fakeAdapter{source: entity.SourceForum, err: errors.New("down")},
		&fakeAdapter{source: entity.SourceBulletin, err: errors.New("down")},
	)

	stats, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.False(t, stats.Success)
}

func TestRunOnlyDuplicatesIsFailure(t *testing.T) {
	adapter := &fakeAdapter{
		source: entity.SourceForum,
		records: []*entity.RawRecord{{
			Title:        "Toronto reserve fund update again",
			EpochSeconds: epochDaysAgo(2),
			Link:         "https://reddit.test/r/toronto/5",
		}},
	}
	repo := newFakeRepo()
	repo.pretendDuplicates = 1
	svc := newService(repo, testRules(), adapter)

	stats, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoDocumentsPersisted)
	assert.False(t, stats.Success)
	assert.Equal(t, int64(1), stats.Sources[0].Duplicated)
}

func TestRunStorePreflightFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.pingErr = repository.ErrStoreUnavailable
	svc := newService(repo, testRules(), &fakeAdapter{source: entity.SourceForum})

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
}

func TestRunBulletinUsesItsOwnKeywordList(t *testing.T) {
	adapter := &fakeAdapter{
		source: entity.SourceBulletin,
		records: []*entity.RawRecord{{
			// "cat" only exists in the bulletin keyword list.
			Title:        "CAT ruling roundup for Toronto owners",
			Body:         "Tribunal decisions digest.",
			Link:         "https://bulletins.test/latest.pdf",
			EpochSeconds: epochDaysAgo(5),
		}},
	}
	repo := newFakeRepo()
	svc := newService(repo, testRules(), adapter)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	saved := repo.batches[entity.SourceBulletin]
	require.Len(t, saved, 1)
	assert.Contains(t, saved[0].Tags, "cat")
}
