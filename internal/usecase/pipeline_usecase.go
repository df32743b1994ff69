package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/banky/internal/classifier"
	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/template"
)

// DefaultMinPageChars is the per-page character count below which a page carries no usable text.
const DefaultMinPageChars = 50

// PipelineConfig wires the collaborators of a PipelineUseCase.
type PipelineConfig struct {
	Documents  DocumentRepository
	Persister  *TransactionPersister
	Extractor  TextExtractor
	Optical    OpticalRecognizer
	Inspector  PageInspector
	Classifier *classifier.Classifier
	Templates  *template.Registry
	Retrier    Retrier
	Metrics    PipelineMetrics
	Logger     zerolog.Logger

	DefaultCurrency string
	MinPageChars    int
}

// PipelineUseCase drives one document through classification, extraction, parsing,
// normalization, validation and persistence.
type PipelineUseCase struct {
	documents  DocumentRepository
	persister  *TransactionPersister
	extractor  TextExtractor
	optical    OpticalRecognizer
	inspector  PageInspector
	classifier *classifier.Classifier
	templates  *template.Registry
	retrier    Retrier
	metrics    PipelineMetrics
	logger     zerolog.Logger
	normalize  domain.NormalizeOptions
	minChars   int
}

// NewPipelineUseCase creates a new PipelineUseCase. Optical and Inspector may be nil.
func NewPipelineUseCase(cfg PipelineConfig) *PipelineUseCase {
	uc := &PipelineUseCase{
		documents:  cfg.Documents,
		persister:  cfg.Persister,
		extractor:  cfg.Extractor,
		optical:    cfg.Optical,
		inspector:  cfg.Inspector,
		classifier: cfg.Classifier,
		templates:  cfg.Templates,
		retrier:    cfg.Retrier,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		normalize:  domain.NormalizeOptions{DefaultCurrency: cfg.DefaultCurrency},
		minChars:   cfg.MinPageChars,
	}
	if uc.classifier == nil {
		uc.classifier = classifier.New()
	}
	if uc.templates == nil {
		uc.templates = template.NewRegistry()
	}
	if uc.retrier == nil {
		uc.retrier = directRetrier{}
	}
	if uc.metrics == nil {
		uc.metrics = nopMetrics{}
	}
	if uc.minChars <= 0 {
		uc.minChars = DefaultMinPageChars
	}
	return uc
}

// pipelineRun is the working state of a single Run.
type pipelineRun struct {
	doc    *domain.Document
	pages  []string
	parsed template.ParseResult
	batch  []domain.NormalizedTransaction
	log    zerolog.Logger
	// persisted counts rows committed by this run.
	persisted int
}

type stage struct {
	name domain.Stage
	next domain.DocumentStatus
	run  func(ctx context.Context, r *pipelineRun) error
}

func (uc *PipelineUseCase) stages() []stage {
	return []stage{
		{domain.StageClassify, domain.StatusClassified, uc.classify},
		{domain.StageTextExtract, domain.StatusTextExtracted, uc.extractText},
		{domain.StageParse, domain.StatusParsed, uc.parse},
		{domain.StageNormalize, domain.StatusNormalized, uc.normalizeBatch},
		{domain.StageValidate, domain.StatusValidated, uc.validate},
		{domain.StagePersist, domain.StatusDone, uc.persist},
	}
}

// Run processes an INGESTED document to DONE or FAILED and returns it. A pipeline failure is
// recorded on the document and is not returned as an error; errors are returned only when the
// document cannot be loaded, is not runnable, or its failure cannot be recorded.
func (uc *PipelineUseCase) Run(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}

	if doc.Status != domain.StatusIngested {
		return doc, fmt.Errorf("%w: %s is %s", domain.ErrDocumentNotRunnable, doc.ID, doc.Status)
	}

	run := &pipelineRun{
		doc: doc,
		log: uc.logger.With().Str("document_id", doc.ID).Logger(),
	}
	started := time.Now()

	for _, st := range uc.stages() {
		if err := uc.runStage(ctx, run, st); err != nil {
			if ferr := uc.fail(ctx, run, err); ferr != nil {
				return doc, ferr
			}
			break
		}
	}

	uc.metrics.RecordOutcome(doc.Status)
	run.log.Info().
		Str("status", string(doc.Status)).
		Str("brand", string(doc.Brand)).
		Dur("duration", time.Since(started)).
		Msg("pipeline finished")

	return doc, nil
}

// runStage executes one stage and checkpoints the document. Panics are turned into errors here
// so that Run remains the only place a failure is recorded.
func (uc *PipelineUseCase) runStage(ctx context.Context, run *pipelineRun, st stage) (err error) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = domain.NewStageError(st.name, domain.FailureUnhandled, fmt.Errorf("panic: %v", rec))
		}
		uc.metrics.ObserveStage(st.name, time.Since(started))
	}()

	if err := ctx.Err(); err != nil {
		return domain.NewStageError(st.name, domain.FailureUnhandled, err)
	}

	if err := st.run(ctx, run); err != nil {
		var se *domain.StageError
		if errors.As(err, &se) {
			return err
		}
		return domain.NewStageError(st.name, domain.FailureUnhandled, err)
	}

	if err := uc.checkpoint(ctx, run.doc, st.next); err != nil {
		return domain.NewStageError(st.name, domain.FailureUnhandled, err)
	}

	run.log.Debug().Str("stage", string(st.name)).Str("status", string(st.next)).Msg("stage complete")
	return nil
}

// checkpoint advances doc to next and writes it. On a failed write doc keeps its previous state.
func (uc *PipelineUseCase) checkpoint(ctx context.Context, doc *domain.Document, next domain.DocumentStatus) error {
	prev := *doc
	if err := doc.TransitionTo(next, time.Now().UTC()); err != nil {
		return err
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.documents.UpdateStatus(ctx, doc)
	})
	if err != nil {
		*doc = prev
		return fmt.Errorf("checkpoint %s: %w", next, err)
	}
	return nil
}

func (uc *PipelineUseCase) fail(ctx context.Context, run *pipelineRun, cause error) error {
	kind, stageName, msg := domain.FailureUnhandled, domain.Stage(""), cause.Error()

	var se *domain.StageError
	if errors.As(cause, &se) {
		kind, stageName, msg = se.Kind, se.Stage, se.Message()
	}
	if strings.TrimSpace(msg) == "" {
		msg = string(kind)
	}

	uc.metrics.RecordFailure(kind)
	run.log.Error().
		Err(cause).
		Str("stage", string(stageName)).
		Str("kind", string(kind)).
		Msg("pipeline failed")

	// Rows are committed before the DONE checkpoint; a failed checkpoint leaves them attached
	// to a FAILED document.
	if run.persisted > 0 {
		run.log.Warn().
			Int("orphaned_transactions", run.persisted).
			Msg("transactions committed before the failure remain stored")
	}

	if err := run.doc.Fail(msg, time.Now().UTC()); err != nil {
		return fmt.Errorf("record failure of %s: %w", run.doc.ID, err)
	}

	// The failure must be written even when the caller has gone away.
	writeCtx := context.WithoutCancel(ctx)
	err := uc.retrier.Retry(writeCtx, func() error {
		return uc.documents.UpdateStatus(writeCtx, run.doc)
	})
	if err != nil {
		return fmt.Errorf("record failure of %s: %w", run.doc.ID, err)
	}
	return nil
}

func (uc *PipelineUseCase) classify(ctx context.Context, run *pipelineRun) error {
	run.pages = uc.extractPages(ctx, run)

	brand := uc.classifier.DetectSource(run.pages)
	start, end := uc.classifier.DetectPeriod(run.pages)
	scanned := uc.detectScanned(ctx, run)

	run.doc.SetClassification(brand, scanned, start, end)

	if !brand.IsKnown() {
		run.log.Warn().
			Str("kind", string(domain.FailureUnrecognizedSource)).
			Int("pages", len(run.pages)).
			Msg("no source matched the document")
	}
	run.log.Info().
		Str("brand", string(brand)).
		Bool("scanned", scanned).
		Bool("period", start != nil).
		Msg("document classified")
	return nil
}

func (uc *PipelineUseCase) extractPages(ctx context.Context, run *pipelineRun) []string {
	pages, err := uc.extractor.ExtractPages(ctx, run.doc.Locator)
	if err != nil {
		run.log.Warn().
			Err(err).
			Str("kind", string(domain.FailureExtraction)).
			Msg("text extraction failed")
		return nil
	}
	return pages
}

func (uc *PipelineUseCase) detectScanned(ctx context.Context, run *pipelineRun) bool {
	if uc.inspector == nil {
		return false
	}
	stats, err := uc.inspector.InspectPages(ctx, run.doc.Locator, classifier.ScanSamplePages)
	if err != nil {
		run.log.Debug().Err(err).Msg("page inspection failed")
		return false
	}
	return uc.classifier.DetectScanned(stats)
}

func (uc *PipelineUseCase) extractText(ctx context.Context, run *pipelineRun) error {
	scanned := run.doc.IsScanned != nil && *run.doc.IsScanned
	if !scanned && classifier.HasMeaningfulText(run.pages, uc.minChars) {
		return nil
	}
	if uc.optical == nil {
		run.log.Warn().Str("kind", string(domain.FailureExtraction)).Msg("no usable text and no optical recognizer")
		return nil
	}

	uc.metrics.RecordOpticalFallback()
	recovered, err := uc.optical.RecoverPages(ctx, run.doc.Locator)
	if err != nil {
		run.log.Warn().
			Err(err).
			Str("kind", string(domain.FailureExtraction)).
			Msg("optical recognition failed")
	}

	if !classifier.HasMeaningfulText(recovered, 0) {
		if !classifier.HasMeaningfulText(run.pages, 0) {
			run.log.Warn().Str("kind", string(domain.FailureExtraction)).Msg("document has no text")
		}
		return nil
	}
	run.pages = recovered

	if !run.doc.Brand.IsKnown() {
		if brand := uc.classifier.DetectSource(run.pages); brand.IsKnown() {
			start, end := run.doc.PeriodStart, run.doc.PeriodEnd
			if s, e := uc.classifier.DetectPeriod(run.pages); s != nil {
				start, end = s, e
			}
			run.doc.SetClassification(brand, scanned, start, end)
			run.log.Info().Str("brand", string(brand)).Msg("document reclassified from recognized text")
		}
	}

	run.log.Info().Int("pages", len(run.pages)).Msg("text recovered optically")
	return nil
}

func (uc *PipelineUseCase) parse(_ context.Context, run *pipelineRun) error {
	run.parsed = uc.templates.Parse(run.doc.Brand, run.pages)

	if run.parsed.Recovered != "" {
		run.log.Warn().
			Str("kind", string(domain.FailureParsingDegradation)).
			Str("panic", run.parsed.Recovered).
			Msg("template failed, continuing with no records")
	}
	if run.parsed.Method == template.MethodNone {
		run.log.Warn().
			Str("kind", string(domain.FailureUnrecognizedSource)).
			Str("brand", string(run.doc.Brand)).
			Msg("no template for source")
	}

	run.log.Info().
		Str("method", run.parsed.Method).
		Int("records", run.parsed.Total()).
		Msg("transactions parsed")
	return nil
}

func (uc *PipelineUseCase) normalizeBatch(_ context.Context, run *pipelineRun) error {
	run.batch = domain.Normalize(run.parsed.Transactions, uc.normalize)

	if dropped := run.parsed.Total() - len(run.batch); dropped > 0 {
		run.log.Debug().Int("dropped", dropped).Msg("records dropped during normalization")
	}
	return nil
}

func (uc *PipelineUseCase) validate(_ context.Context, run *pipelineRun) error {
	start, end := run.doc.PeriodStart, run.doc.PeriodEnd

	for _, w := range domain.PeriodWarnings(run.batch, start, end) {
		run.log.Warn().Msg(w)
	}

	ok, report := domain.ValidateBatch(run.batch, start, end)
	if !ok {
		return domain.NewStageError(domain.StageValidate, domain.FailureValidation, errors.New(report))
	}
	return nil
}

func (uc *PipelineUseCase) persist(ctx context.Context, run *pipelineRun) error {
	txs, err := uc.persister.Persist(ctx, run.doc.ID, run.batch)
	if err != nil {
		return err
	}

	run.persisted = len(txs)
	uc.metrics.AddTransactions(len(txs))
	run.log.Info().Int("transactions", len(txs)).Msg("transactions persisted")
	return nil
}
