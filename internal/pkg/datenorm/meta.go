package datenorm

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaSelectors are tried in priority order. Publisher-declared publish
// times beat generic date tags, which beat a bare <time> element.
var metaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="article:published_time"]`,
	`meta[property="og:published_time"]`,
	`meta[name="date"]`,
	`meta[name="DC.date"]`,
	`meta[name="dcterms.date"]`,
	`meta[itemprop="datePublished"]`,
}

// extractMetaDate pulls the first non-empty date declaration out of an HTML
// document. It returns the raw attribute value; parsing is the caller's job.
func extractMetaDate(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	for _, sel := range metaSelectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}

	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}
