// Package extractor pulls plain text out of downloaded bulletin PDFs.
package extractor

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPages bounds how deep into a PDF extraction reads. Bulletin issues
// front-load their content; anything past the first pages is boilerplate.
const MaxPages = 3

// PDFText extracts text from the first MaxPages pages of a PDF. Extraction
// is best-effort: a malformed or image-only PDF yields an empty string, and
// the caller decides whether to skip the document. The pdf library panics on
// some malformed inputs, so the whole extraction runs under a recover.
func PDFText(data []byte, logger *slog.Logger) (text string) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("pdf extraction panicked", "panic", r)
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logger.Warn("pdf open failed", "error", err)
		return ""
	}

	pages := reader.NumPage()
	if pages > MaxPages {
		pages = MaxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf page extraction failed", "page", i, "error", err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
