package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/banky/internal/domain"
)

// TransactionPersister writes a validated batch for a document.
type TransactionPersister struct {
	txManager    TransactionManager
	transactions TransactionRepository
	idGen        IDGenerator
	retrier      Retrier
}

// NewTransactionPersister creates a new TransactionPersister. A nil retrier runs every write once.
func NewTransactionPersister(
	txManager TransactionManager,
	transactions TransactionRepository,
	idGen IDGenerator,
	retrier Retrier,
) *TransactionPersister {
	if retrier == nil {
		retrier = directRetrier{}
	}
	return &TransactionPersister{
		txManager:    txManager,
		transactions: transactions,
		idGen:        idGen,
		retrier:      retrier,
	}
}

// Persist stores batch under documentID in a single database transaction and returns the
// created rows in batch order. Calling it twice for the same document stores the batch twice.
func (p *TransactionPersister) Persist(ctx context.Context, documentID string, batch []domain.NormalizedTransaction) ([]*domain.Transaction, error) {
	now := time.Now().UTC()

	txs := make([]*domain.Transaction, 0, len(batch))
	for _, n := range batch {
		txs = append(txs, &domain.Transaction{
			ID:          p.idGen.Generate(),
			DocumentID:  documentID,
			Date:        n.Date,
			Description: n.Description,
			Amount:      n.Amount,
			Currency:    n.Currency,
			Type:        n.Type,
			Balance:     n.Balance,
			CreatedAt:   now,
		})
	}

	err := p.retrier.Retry(ctx, func() error {
		return p.persistOnce(ctx, txs)
	})
	if err != nil {
		return nil, fmt.Errorf("persist %d transactions for %s: %w", len(txs), documentID, err)
	}

	return txs, nil
}

func (p *TransactionPersister) persistOnce(ctx context.Context, txs []*domain.Transaction) error {
	tx, err := p.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := p.transactions.AppendBatch(ctx, tx, txs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
