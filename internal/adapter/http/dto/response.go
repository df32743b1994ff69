package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/usecase"
)

const dateLayout = "2006-01-02"

// DocumentResponse represents a document in API responses.
type DocumentResponse struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type,omitempty"`
	ContentHash string     `json:"content_hash"`
	Status      string     `json:"status"`
	Bank        string     `json:"bank,omitempty"`
	IsScanned   *bool      `json:"is_scanned,omitempty"`
	PeriodStart *string    `json:"period_start,omitempty"`
	PeriodEnd   *string    `json:"period_end,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// DocumentFromDomain converts domain document to response.
func DocumentFromDomain(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		ContentHash: d.ContentHash,
		Status:      string(d.Status),
		Bank:        d.BankCode,
		IsScanned:   d.IsScanned,
		PeriodStart: formatDate(d.PeriodStart),
		PeriodEnd:   formatDate(d.PeriodEnd),
		Error:       d.Error,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

// DocumentsFromDomain converts domain documents to responses.
func DocumentsFromDomain(docs []*domain.Document) []*DocumentResponse {
	result := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		result[i] = DocumentFromDomain(d)
	}
	return result
}

// TransactionResponse represents an extracted transaction in API responses.
type TransactionResponse struct {
	ID          string           `json:"id"`
	Date        *string          `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency"`
	Type        string           `json:"type"`
	Balance     *decimal.Decimal `json:"balance"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Date:        formatDate(t.Date),
		Description: t.Description,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Type:        string(t.Type),
		Balance:     t.Balance,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// UploadResponse is returned by the upload endpoint.
type UploadResponse struct {
	DocumentID string `json:"doc_id"`
	Status     string `json:"status"`
	Cached     bool   `json:"cached"`
	Dispatched bool   `json:"dispatched"`
}

// UploadFromResult converts an ingest result to response.
func UploadFromResult(res *usecase.IngestResult) *UploadResponse {
	return &UploadResponse{
		DocumentID: res.Document.ID,
		Status:     string(res.Document.Status),
		Cached:     res.Cached,
		Dispatched: res.Dispatched,
	}
}

// ResultResponse is a document's extracted transactions with totals.
type ResultResponse struct {
	DocumentID   string                 `json:"doc_id"`
	Document     string                 `json:"document"`
	Bank         string                 `json:"bank,omitempty"`
	Status       string                 `json:"status"`
	Transactions []*TransactionResponse `json:"transactions"`
	TotalIncome  decimal.Decimal        `json:"total_income"`
	TotalExpense decimal.Decimal        `json:"total_expense"`
}

// ResultFromUseCase converts a document result to response.
func ResultFromUseCase(res *usecase.DocumentResult) *ResultResponse {
	return &ResultResponse{
		DocumentID:   res.Document.ID,
		Document:     res.Document.Filename,
		Bank:         res.Document.BankCode,
		Status:       string(res.Document.Status),
		Transactions: TransactionsFromDomain(res.Transactions),
		TotalIncome:  res.TotalIncome,
		TotalExpense: res.TotalExpense,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
