package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"condo-radar/internal/domain/entity"
	"condo-radar/internal/infra/extractor"
)

// BulletinAdapter scrapes an index page for links to PDF bulletin issues,
// downloads each issue and extracts its text. Issues whose extraction comes
// back blank, typically image-only scans, are skipped with a warning rather
// than persisted as empty documents.
type BulletinAdapter struct {
	fetcher  Fetcher
	indexURL string
	logger   *slog.Logger
}

func NewBulletinAdapter(fetcher Fetcher, indexURL string, logger *slog.Logger) *BulletinAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BulletinAdapter{
		fetcher:  fetcher,
		indexURL: indexURL,
		logger:   logger,
	}
}

func (a *BulletinAdapter) Source() entity.Source {
	return entity.SourceBulletin
}

// List fetches the index page, resolves every PDF link it references and
// returns one record per readable issue. A single issue failing to download
// or extract is skipped; List errors only when the index itself is
// unreachable.
func (a *BulletinAdapter) List(ctx context.Context) ([]*entity.RawRecord, error) {
	body, err := a.fetcher.GetListing(ctx, a.indexURL)
	if err != nil {
		return nil, fmt.Errorf("bulletin index: %w", err)
	}

	links, err := a.pdfLinks(body)
	if err != nil {
		return nil, fmt.Errorf("bulletin index: %w", err)
	}

	var records []*entity.RawRecord
	for _, link := range links {
		data, err := a.fetcher.Download(ctx, link.href)
		if err != nil {
			a.logger.Warn("bulletin download failed",
				"url", link.href,
				"error", err)
			continue
		}
		text := extractor.PDFText(data, a.logger)
		if text == "" {
			a.logger.Warn("bulletin issue has no extractable text, skipping",
				"url", link.href)
			continue
		}
		records = append(records, &entity.RawRecord{
			Title: link.title,
			Body:  text,
			Link:  link.href,
		})
	}
	return records, nil
}

type pdfLink struct {
	href  string
	title string
}

// pdfLinks pulls every anchor pointing to a .pdf out of the index page.
// Relative hrefs are resolved against the index URL, and the same issue
// linked twice is returned once.
func (a *BulletinAdapter) pdfLinks(indexHTML []byte) ([]pdfLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(indexHTML))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(a.indexURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var links []pdfLink
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(href)), ".pdf") {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title = strings.TrimSuffix(path.Base(ref.Path), path.Ext(ref.Path))
		}
		links = append(links, pdfLink{href: abs, title: title})
	})
	return links, nil
}
