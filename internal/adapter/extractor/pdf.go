// Package extractor reads text out of statement PDFs, either from the embedded text layer or by
// rasterizing pages and running them through tesseract.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/iho/banky/internal/domain"
)

// ErrNoPages is returned for a PDF whose page tree is empty.
var ErrNoPages = errors.New("pdf has no pages")

// PDFExtractor reads the text layer of a PDF page by page.
type PDFExtractor struct {
	logger zerolog.Logger
}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor(logger zerolog.Logger) *PDFExtractor {
	return &PDFExtractor{logger: logger.With().Str("component", "pdf_extractor").Logger()}
}

// ExtractPages returns one string per page, lines rebuilt from the library's row grouping.
// Pages the library cannot decode come back empty so page numbering is kept.
func (e *PDFExtractor) ExtractPages(ctx context.Context, locator string) (pages []string, err error) {
	err = e.withReader(locator, func(r *pdf.Reader) error {
		n := r.NumPage()
		if n == 0 {
			return ErrNoPages
		}
		pages = make([]string, 0, n)
		for i := 1; i <= n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			pages = append(pages, e.pageText(r, i))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// InspectPages reports text and image counts for up to limit pages. A limit <= 0 inspects all.
func (e *PDFExtractor) InspectPages(ctx context.Context, locator string, limit int) (stats []domain.PageStats, err error) {
	err = e.withReader(locator, func(r *pdf.Reader) error {
		n := r.NumPage()
		if limit > 0 && n > limit {
			n = limit
		}
		stats = make([]domain.PageStats, 0, n)
		for i := 1; i <= n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			text := e.pageText(r, i)
			stats = append(stats, domain.PageStats{
				Chars:  len([]rune(strings.TrimSpace(text))),
				Images: countImages(r.Page(i)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// withReader opens locator and turns library panics on malformed files into errors.
func (e *PDFExtractor) withReader(locator string, fn func(r *pdf.Reader) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("read pdf %s: library panic: %v", locator, rec)
		}
	}()

	f, r, err := pdf.Open(locator)
	if err != nil {
		return fmt.Errorf("open pdf %s: %w", locator, err)
	}
	defer f.Close()

	return fn(r)
}

func (e *PDFExtractor) pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn().Int("page", num).Interface("panic", rec).Msg("page text unreadable")
			text = ""
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return ""
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		e.logger.Debug().Err(err).Int("page", num).Msg("page text unreadable")
		return ""
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// countImages counts image XObjects referenced from the page resources.
func countImages(page pdf.Page) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()

	if page.V.IsNull() {
		return 0
	}
	xobjects := page.Resources().Key("XObject")
	if xobjects.IsNull() {
		return 0
	}
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			n++
		}
	}
	return n
}
