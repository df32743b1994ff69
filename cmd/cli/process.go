package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/banky/internal/adapter/extractor"
	"github.com/iho/banky/internal/adapter/http/dto"
	"github.com/iho/banky/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/banky/internal/adapter/repository/postgres"
	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/infrastructure/logger"
	"github.com/iho/banky/internal/infrastructure/storage"
	"github.com/iho/banky/internal/usecase"
)

// processDeps are the text sources of an offline run.
type processDeps struct {
	extractor usecase.TextExtractor
	inspector usecase.PageInspector
	optical   usecase.OpticalRecognizer
}

type processOptions struct {
	currency string
	minChars int
}

// queuedDispatcher collects dispatched IDs so the caller can run them inline.
type queuedDispatcher struct {
	ids []string
}

func (d *queuedDispatcher) Dispatch(_ context.Context, id string) error {
	d.ids = append(d.ids, id)
	return nil
}

func processCmd() *cobra.Command {
	var (
		format   string
		noOCR    bool
		currency string
		minChars int
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "process <statement.pdf>",
		Short: "Extract transactions from a statement without a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}

			log := logger.New(logger.Config{Level: logLevel, Format: "console", Output: cmd.ErrOrStderr()})
			pdf := extractor.NewPDFExtractor(log)
			deps := processDeps{extractor: pdf, inspector: pdf}
			if !noOCR {
				deps.optical = extractor.NewOCRRecognizer(extractor.DefaultOCRConfig(), log)
			}

			res, err := processFile(cmd.Context(), args[0], deps, processOptions{currency: currency, minChars: minChars}, log)
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), format, res)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or csv")
	cmd.Flags().BoolVar(&noOCR, "no-ocr", false, "Skip OCR for scanned statements")
	cmd.Flags().StringVar(&currency, "currency", "MXN", "Currency for transactions that do not state one")
	cmd.Flags().IntVar(&minChars, "min-page-chars", usecase.DefaultMinPageChars, "Characters per page below which OCR is tried")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")
	return cmd
}

// processFile runs the whole pipeline for one local file against an in-memory store.
func processFile(ctx context.Context, path string, deps processDeps, opts processOptions, log zerolog.Logger) (*dto.ResultResponse, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	hash, err := storage.HashFile(path)
	if err != nil {
		return nil, err
	}
	locator, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore()
	idGen := postgresRepo.NewULIDGenerator()
	queue := &queuedDispatcher{}

	pipeline := usecase.NewPipelineUseCase(usecase.PipelineConfig{
		Documents:       store.Documents(),
		Persister:       usecase.NewTransactionPersister(store, store.Transactions(), idGen, nil),
		Extractor:       deps.extractor,
		Optical:         deps.optical,
		Inspector:       deps.inspector,
		Logger:          log,
		DefaultCurrency: opts.currency,
		MinPageChars:    opts.minChars,
	})
	ingest := usecase.NewIngestUseCase(store.Documents(), queue, idGen, nil, log)
	documents := usecase.NewDocumentUseCase(store.Documents(), store.Transactions(), nil, 0, log)

	ingested, err := ingest.Ingest(ctx, usecase.IngestInput{
		Locator:     locator,
		ContentHash: hash,
		Filename:    filepath.Base(path),
		ContentType: "application/pdf",
	})
	if err != nil {
		return nil, err
	}

	for _, id := range queue.ids {
		if _, err := pipeline.Run(ctx, id); err != nil {
			return nil, err
		}
	}

	doc, err := documents.GetDocument(ctx, ingested.Document.ID)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.StatusFailed {
		msg := "unknown error"
		if doc.Error != nil {
			msg = *doc.Error
		}
		return nil, fmt.Errorf("processing %s failed: %s", filepath.Base(path), msg)
	}

	result, err := documents.GetResult(ctx, doc.ID)
	if err != nil {
		if errors.Is(err, domain.ErrResultNotReady) {
			return nil, fmt.Errorf("processing %s stopped at %s", filepath.Base(path), doc.Status)
		}
		return nil, err
	}
	return dto.ResultFromUseCase(result), nil
}
