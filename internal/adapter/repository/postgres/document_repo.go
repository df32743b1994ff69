package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/infrastructure/postgres/generated"
	"github.com/iho/banky/internal/usecase"
)

// DocumentRepository implements usecase.DocumentRepository.
type DocumentRepository struct {
	queries *generated.Queries
}

// NewDocumentRepository creates a new DocumentRepository. db is usually a *pgxpool.Pool.
func NewDocumentRepository(db generated.DBTX) *DocumentRepository {
	return &DocumentRepository{
		queries: generated.New(db),
	}
}

// Create inserts a newly ingested document.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.queries.CreateDocument(ctx, generated.CreateDocumentParams{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Locator:     doc.Locator,
		ContentHash: doc.ContentHash,
		Brand:       string(doc.Brand),
		BankCode:    doc.BankCode,
		Status:      string(doc.Status),
		CreatedAt:   timeToPgTimestamptz(doc.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(doc.UpdatedAt),
	})
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row, err := r.queries.GetDocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}

		return nil, err
	}

	return rowToDocument(row), nil
}

// FindByHash returns every document with contentHash, newest first.
func (r *DocumentRepository) FindByHash(ctx context.Context, contentHash string) ([]*domain.Document, error) {
	rows, err := r.queries.ListDocumentsByHash(ctx, contentHash)
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// UpdateStatus writes the mutable pipeline fields of doc.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, doc *domain.Document) error {
	n, err := r.queries.UpdateDocumentStatus(ctx, generated.UpdateDocumentStatusParams{
		ID:          doc.ID,
		Status:      string(doc.Status),
		Brand:       string(doc.Brand),
		BankCode:    doc.BankCode,
		IsScanned:   optBoolToPgBool(doc.IsScanned),
		PeriodStart: optTimeToPgDate(doc.PeriodStart),
		PeriodEnd:   optTimeToPgDate(doc.PeriodEnd),
		Error:       optStringToPgText(doc.Error),
		UpdatedAt:   timeToPgTimestamptz(doc.UpdatedAt),
		ProcessedAt: optTimeToPgTimestamptz(doc.ProcessedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrDocumentNotFound
	}

	return nil
}

// List lists documents newest first, optionally by status.
func (r *DocumentRepository) List(ctx context.Context, filter usecase.DocumentFilter) ([]*domain.Document, error) {
	var (
		rows []generated.Document
		err  error
	)

	if filter.Status != nil {
		rows, err = r.queries.ListDocumentsByStatus(ctx, generated.ListDocumentsByStatusParams{
			Status: string(*filter.Status),
			Limit:  int32(filter.Limit),
			Offset: int32(filter.Offset),
		})
	} else {
		rows, err = r.queries.ListDocuments(ctx, generated.ListDocumentsParams{
			Limit:  int32(filter.Limit),
			Offset: int32(filter.Offset),
		})
	}
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

// ListParked returns non-terminal documents not updated since before, oldest first.
func (r *DocumentRepository) ListParked(ctx context.Context, before time.Time, limit int) ([]*domain.Document, error) {
	rows, err := r.queries.ListParkedDocuments(ctx, generated.ListParkedDocumentsParams{
		UpdatedAt: timeToPgTimestamptz(before),
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToDocuments(rows), nil
}

func rowsToDocuments(rows []generated.Document) []*domain.Document {
	docs := make([]*domain.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, rowToDocument(row))
	}
	return docs
}

func rowToDocument(row generated.Document) *domain.Document {
	return &domain.Document{
		ID:          row.ID,
		Filename:    row.Filename,
		ContentType: row.ContentType,
		Locator:     row.Locator,
		ContentHash: row.ContentHash,
		Brand:       domain.ParseBrand(row.Brand),
		BankCode:    row.BankCode,
		Status:      domain.DocumentStatus(row.Status),
		IsScanned:   pgBoolToOptBool(row.IsScanned),
		PeriodStart: pgDateToOptTime(row.PeriodStart),
		PeriodEnd:   pgDateToOptTime(row.PeriodEnd),
		Error:       pgTextToOptString(row.Error),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
		ProcessedAt: pgTimestamptzToOptTime(row.ProcessedAt),
	}
}
