package postgres

import (
	"context"
	"fmt"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/infrastructure/postgres/generated"
	"github.com/iho/banky/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{
		queries: generated.New(db),
	}
}

// AppendBatch copies txs into the transactions table inside tx. Batch order is kept in the
// position column.
func (r *TransactionRepository) AppendBatch(ctx context.Context, tx usecase.Transaction, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	pgTx, ok := tx.(*Tx)
	if !ok {
		return fmt.Errorf("append transactions: unsupported transaction %T", tx)
	}
	queries := pgTx.Queries()

	params := make([]generated.CreateTransactionsParams, 0, len(txs))
	for i, t := range txs {
		params = append(params, generated.CreateTransactionsParams{
			ID:          t.ID,
			DocumentID:  t.DocumentID,
			Position:    int32(i),
			Date:        optTimeToPgDate(t.Date),
			Description: t.Description,
			Amount:      decimalToNumeric(t.Amount),
			Currency:    t.Currency,
			Type:        string(t.Type),
			Balance:     optDecimalToNumeric(t.Balance),
			CreatedAt:   timeToPgTimestamptz(t.CreatedAt),
		})
	}

	n, err := queries.CreateTransactions(ctx, params)
	if err != nil {
		return err
	}
	if n != int64(len(params)) {
		return fmt.Errorf("append transactions: copied %d of %d rows", n, len(params))
	}

	return nil
}

// ListByDocument returns a document's transactions in statement order.
func (r *TransactionRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, rowToTransaction(row))
	}

	return txs, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.ID,
		DocumentID:  row.DocumentID,
		Date:        pgDateToOptTime(row.Date),
		Description: row.Description,
		Amount:      numericToDecimal(row.Amount),
		Currency:    row.Currency,
		Type:        domain.TransactionType(row.Type),
		Balance:     numericToOptDecimal(row.Balance),
		CreatedAt:   row.CreatedAt.Time,
	}
}
