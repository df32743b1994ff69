package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/banky/internal/domain"
)

// Ingest outcomes reported to metrics.
const (
	IngestCreated  = "created"
	IngestCached   = "cached"
	IngestInFlight = "in_flight"
)

// IngestUseCase registers uploaded documents and schedules their processing.
type IngestUseCase struct {
	documents  DocumentRepository
	dispatcher Dispatcher
	idGen      IDGenerator
	metrics    PipelineMetrics
	logger     zerolog.Logger
}

// NewIngestUseCase creates a new IngestUseCase. metrics may be nil.
func NewIngestUseCase(
	documents DocumentRepository,
	dispatcher Dispatcher,
	idGen IDGenerator,
	metrics PipelineMetrics,
	logger zerolog.Logger,
) *IngestUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &IngestUseCase{
		documents:  documents,
		dispatcher: dispatcher,
		idGen:      idGen,
		metrics:    metrics,
		logger:     logger,
	}
}

// IngestInput describes a stored upload.
type IngestInput struct {
	Locator     string
	ContentHash string
	Filename    string
	ContentType string
}

// IngestResult is the document an upload resolved to.
type IngestResult struct {
	Document *domain.Document
	// Cached is set when a DONE document with the same content already existed.
	Cached bool
	// Dispatched is set when a pipeline run was scheduled for this upload.
	Dispatched bool
}

// Ingest resolves an upload to a document. Content already processed to DONE is returned as is;
// content currently being processed returns the in-flight document; anything else creates a new
// INGESTED document and dispatches it. Failed documents never short-circuit a re-upload.
func (uc *IngestUseCase) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if input.Locator == "" || input.ContentHash == "" {
		return nil, fmt.Errorf("ingest: locator and content hash are required")
	}

	existing, err := uc.documents.FindByHash(ctx, input.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}

	var inFlight *domain.Document
	for _, doc := range existing {
		if doc.Status == domain.StatusDone {
			uc.metrics.RecordIngest(IngestCached)
			uc.logger.Info().Str("document_id", doc.ID).Msg("upload matches a processed document")
			return &IngestResult{Document: doc, Cached: true}, nil
		}
		if inFlight == nil && !doc.Status.IsTerminal() {
			inFlight = doc
		}
	}
	if inFlight != nil {
		uc.metrics.RecordIngest(IngestInFlight)
		uc.logger.Info().Str("document_id", inFlight.ID).Msg("upload matches a document in progress")
		return &IngestResult{Document: inFlight}, nil
	}

	doc := domain.NewDocument(uc.idGen.Generate(), input.Locator, input.ContentHash, input.Filename, input.ContentType, time.Now().UTC())
	if err := uc.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	uc.metrics.RecordIngest(IngestCreated)

	if err := uc.dispatcher.Dispatch(ctx, doc.ID); err != nil {
		// The document stays INGESTED and is reported by the sweeper.
		uc.logger.Error().Err(err).Str("document_id", doc.ID).Msg("dispatch failed")
		return &IngestResult{Document: doc}, nil
	}

	uc.logger.Info().Str("document_id", doc.ID).Str("filename", doc.Filename).Msg("document ingested")
	return &IngestResult{Document: doc, Dispatched: true}, nil
}
