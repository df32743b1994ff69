package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// OCRConfig tunes the rasterize-then-recognize fallback.
type OCRConfig struct {
	Languages   string
	DPI         int
	PageTimeout time.Duration
	Concurrency int
	WorkDir     string
}

// DefaultOCRConfig matches what tesseract handles well for scanned Mexican statements.
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{
		Languages:   "spa+eng",
		DPI:         300,
		PageTimeout: 60 * time.Second,
		Concurrency: 2,
	}
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// OCRRecognizer renders pages with pdftoppm and reads them with tesseract.
type OCRRecognizer struct {
	cfg    OCRConfig
	run    runFunc
	logger zerolog.Logger
}

// NewOCRRecognizer creates a new OCRRecognizer. Zero fields of cfg take DefaultOCRConfig values.
func NewOCRRecognizer(cfg OCRConfig, logger zerolog.Logger) *OCRRecognizer {
	def := DefaultOCRConfig()
	if cfg.Languages == "" {
		cfg.Languages = def.Languages
	}
	if cfg.DPI <= 0 {
		cfg.DPI = def.DPI
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = def.PageTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	return &OCRRecognizer{
		cfg:    cfg,
		run:    execCommand,
		logger: logger.With().Str("component", "ocr").Logger(),
	}
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// RecoverPages returns recognized text per page, in page order. A page that fails to recognize
// yields "" rather than failing the document.
func (o *OCRRecognizer) RecoverPages(ctx context.Context, locator string) ([]string, error) {
	dir, err := os.MkdirTemp(o.cfg.WorkDir, "banky-ocr-")
	if err != nil {
		return nil, fmt.Errorf("create ocr work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	if _, err := o.run(ctx, "pdftoppm", "-r", strconv.Itoa(o.cfg.DPI), "-png", locator, prefix); err != nil {
		return nil, fmt.Errorf("rasterize %s: %w", locator, err)
	}

	images, err := renderedPages(dir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("rasterize %s: %w", locator, ErrNoPages)
	}

	pages := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i, img := range images {
		g.Go(func() error {
			pages[i] = o.recognize(gctx, img, i+1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Debug().Str("locator", locator).Int("pages", len(pages)).Msg("ocr finished")
	return pages, nil
}

func (o *OCRRecognizer) recognize(ctx context.Context, image string, page int) string {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.PageTimeout)
	defer cancel()

	out, err := o.run(ctx, "tesseract", image, "stdout", "-l", o.cfg.Languages, "--psm", "6")
	if err != nil {
		o.logger.Warn().Err(err).Int("page", page).Msg("page recognition failed")
		return ""
	}
	return strings.TrimSpace(string(out))
}

// renderedPages lists pdftoppm output sorted by page number. pdftoppm zero-pads the number to
// the width of the page count, so lexical order is not reliable across documents.
func renderedPages(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}

	type rendered struct {
		path string
		num  int
	}
	pages := make([]rendered, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		num, err := strconv.Atoi(strings.TrimPrefix(base, "page-"))
		if err != nil {
			continue
		}
		pages = append(pages, rendered{path: m, num: num})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}
