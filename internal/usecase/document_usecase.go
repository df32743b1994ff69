package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/banky/internal/domain"
)

// DefaultResultCacheTTL is how long a DONE result stays cached.
const DefaultResultCacheTTL = time.Hour

// DocumentUseCase answers document and result queries.
type DocumentUseCase struct {
	documents    DocumentRepository
	transactions TransactionRepository
	cache        Cache
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewDocumentUseCase creates a new DocumentUseCase. cache may be nil.
func NewDocumentUseCase(
	documents DocumentRepository,
	transactions TransactionRepository,
	cache Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *DocumentUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultResultCacheTTL
	}
	return &DocumentUseCase{
		documents:    documents,
		transactions: transactions,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// ListDocumentsInput represents input for listing documents.
type ListDocumentsInput struct {
	Status string
	Limit  int
	Offset int
}

// DocumentResult is a document together with its extracted transactions.
type DocumentResult struct {
	Document     *domain.Document      `json:"document"`
	Transactions []*domain.Transaction `json:"transactions"`
	TotalIncome  decimal.Decimal       `json:"total_income"`
	TotalExpense decimal.Decimal       `json:"total_expense"`
}

// GetDocument retrieves a document by ID.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return uc.documents.GetByID(ctx, id)
}

// ListDocuments lists documents, optionally filtered by status.
func (uc *DocumentUseCase) ListDocuments(ctx context.Context, input ListDocumentsInput) ([]*domain.Document, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	filter := DocumentFilter{Limit: limit, Offset: offset}
	if input.Status != "" {
		status, err := domain.ParseDocumentStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	return uc.documents.List(ctx, filter)
}

// GetResult returns the transactions of a document whose status allows showing results.
func (uc *DocumentUseCase) GetResult(ctx context.Context, id string) (*DocumentResult, error) {
	if res, ok := uc.cachedResult(ctx, id); ok {
		return res, nil
	}

	doc, err := uc.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.ResultsVisible(doc.Status) {
		return nil, fmt.Errorf("%w: document %s is %s", domain.ErrResultNotReady, doc.ID, doc.Status)
	}

	txs, err := uc.transactions.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	res := summarize(doc, txs)

	// Only DONE results are immutable.
	if doc.Status == domain.StatusDone {
		uc.storeResult(ctx, res)
	}
	return res, nil
}

func summarize(doc *domain.Document, txs []*domain.Transaction) *DocumentResult {
	res := &DocumentResult{
		Document:     doc,
		Transactions: txs,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	if res.Transactions == nil {
		res.Transactions = []*domain.Transaction{}
	}
	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionIncome:
			res.TotalIncome = res.TotalIncome.Add(tx.Amount)
		case domain.TransactionExpense:
			res.TotalExpense = res.TotalExpense.Add(tx.Amount)
		}
	}
	return res
}

func resultCacheKey(id string) string {
	return "result:" + id
}

func (uc *DocumentUseCase) cachedResult(ctx context.Context, id string) (*DocumentResult, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, resultCacheKey(id))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("document_id", id).Msg("result cache read failed")
		}
		return nil, false
	}

	var res DocumentResult
	if err := json.Unmarshal(data, &res); err != nil {
		uc.logger.Warn().Err(err).Str("document_id", id).Msg("discarding unreadable cached result")
		_ = uc.cache.Delete(ctx, resultCacheKey(id))
		return nil, false
	}
	return &res, true
}

func (uc *DocumentUseCase) storeResult(ctx context.Context, res *DocumentResult) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("encode result for cache")
		return
	}
	if err := uc.cache.Set(ctx, resultCacheKey(res.Document.ID), data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("document_id", res.Document.ID).Msg("result cache write failed")
	}
}
