package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condo-radar/internal/domain/entity"
)

const bulletinIndex = `<html><body>
	<a href="/issues/bulletin-may-2026.pdf">Bulletin May 2026</a>
	<a href="issues/bulletin-april-2026.PDF"></a>
	<a href="/issues/bulletin-may-2026.pdf">Bulletin May 2026 (mirror)</a>
	<a href="/about.html">About</a>
	<a href="https://other.example.net/archive/bulletin-2025.pdf">2025 archive</a>
</body></html>`

func TestBulletinAdapterSource(t *testing.T) {
	a := NewBulletinAdapter(&fakeFetcher{}, "https://bulletins.test/", nil)
	assert.Equal(t, entity.SourceBulletin, a.Source())
}

func TestBulletinAdapterResolvesAndDeduplicatesLinks(t *testing.T) {
	f := &fakeFetcher{
		listings: map[string][]byte{
			"https://bulletins.test/": []byte(bulletinIndex),
		},
		downloads: map[string][]byte{},
	}
	a := NewBulletinAdapter(f, "https://bulletins.test/", nil)

	recs, err := a.List(context.Background())
	require.NoError(t, err)
	// Every download fails in this fixture, so no records survive, but the
	// request log shows which links the index scrape produced.
	assert.Empty(t, recs)

	want := []string{
		"https://bulletins.test/",
		"https://bulletins.test/issues/bulletin-may-2026.pdf",
		"https://bulletins.test/issues/bulletin-april-2026.PDF",
		"https://other.example.net/archive/bulletin-2025.pdf",
	}
	assert.Equal(t, want, f.requested, "relative links resolved, duplicates and non-PDF links dropped")
}

func TestBulletinAdapterSkipsUnreadableIssues(t *testing.T) {
	f := &fakeFetcher{
		listings: map[string][]byte{
			"https://bulletins.test/": []byte(`<a href="/a.pdf">Issue A</a>`),
		},
		downloads: map[string][]byte{
			// Downloads fine but is not parseable as a PDF, so extraction
			// yields no text and the issue is skipped.
			"https://bulletins.test/a.pdf": []byte("image-only scan"),
		},
	}
	a := NewBulletinAdapter(f, "https://bulletins.test/", nil)

	recs, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBulletinAdapterIndexUnreachable(t *testing.T) {
	a := NewBulletinAdapter(&fakeFetcher{}, "https://bulletins.test/", nil)

	_, err := a.List(context.Background())
	require.Error(t, err)
}

func TestBulletinAdapterTitleFallsBackToFilename(t *testing.T) {
	f := &fakeFetcher{
		listings: map[string][]byte{
			"https://bulletins.test/": []byte(`<a href="/issues/march-2026.pdf"></a>`),
		},
	}
	a := NewBulletinAdapter(f, "https://bulletins.test/", nil)

	links, err := a.pdfLinks([]byte(`<a href="/issues/march-2026.pdf"></a>`))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "march-2026", links[0].title)
	assert.Equal(t, "https://bulletins.test/issues/march-2026.pdf", links[0].href)
}
