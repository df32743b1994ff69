package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/banky/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// DocumentFilter narrows a document listing.
type DocumentFilter struct {
	Status *domain.DocumentStatus
	Limit  int
	Offset int
}

// DocumentRepository defines data access for documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	// FindByHash returns documents with the given content hash, newest first.
	FindByHash(ctx context.Context, contentHash string) ([]*domain.Document, error)
	// UpdateStatus writes status, classification, error and timestamps of doc.
	UpdateStatus(ctx context.Context, doc *domain.Document) error
	List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error)
	// ListParked returns non-terminal documents not updated since before.
	ListParked(ctx context.Context, before time.Time, limit int) ([]*domain.Document, error)
}

// TransactionRepository defines data access for persisted statement transactions.
type TransactionRepository interface {
	AppendBatch(ctx context.Context, tx Transaction, txs []*domain.Transaction) error
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Transaction, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// TextExtractor returns the embedded text of every page of a stored document.
type TextExtractor interface {
	ExtractPages(ctx context.Context, locator string) ([]string, error)
}

// OpticalRecognizer recovers page text from rendered page images.
type OpticalRecognizer interface {
	RecoverPages(ctx context.Context, locator string) ([]string, error)
}

// PageInspector reports text and image counts for the first limit pages.
type PageInspector interface {
	InspectPages(ctx context.Context, locator string, limit int) ([]domain.PageStats, error)
}

// Dispatcher hands an ingested document to whatever runs the pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, documentID string) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RunLock guards a document against concurrent pipeline runs.
type RunLock interface {
	// Acquire returns false when someone else holds key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// PipelineMetrics records pipeline activity.
type PipelineMetrics interface {
	ObserveStage(stage domain.Stage, d time.Duration)
	RecordOutcome(status domain.DocumentStatus)
	RecordFailure(kind domain.FailureKind)
	RecordOpticalFallback()
	AddTransactions(n int)
	RecordIngest(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveStage(domain.Stage, time.Duration) {}
func (nopMetrics) RecordOutcome(domain.DocumentStatus)      {}
func (nopMetrics) RecordFailure(domain.FailureKind)         {}
func (nopMetrics) RecordOpticalFallback()                   {}
func (nopMetrics) AddTransactions(int)                      {}
func (nopMetrics) RecordIngest(string)                      {}

type directRetrier struct{}

func (directRetrier) Retry(_ context.Context, op func() error) error {
	return op()
}
