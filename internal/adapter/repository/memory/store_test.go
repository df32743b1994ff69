package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/usecase"
)

func TestStore_DocumentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	doc := domain.NewDocument("doc-1", "/tmp/a.pdf", "hash-a", "a.pdf", "application/pdf", now)
	require.NoError(t, s.Documents().Create(ctx, doc))

	// Mutating the caller's copy does not leak into the store.
	doc.Status = domain.StatusDone

	got, err := s.Documents().GetByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIngested, got.Status)

	require.NoError(t, got.TransitionTo(domain.StatusClassified, now.Add(time.Minute)))
	require.NoError(t, s.Documents().UpdateStatus(ctx, got))

	got, err = s.Documents().GetByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClassified, got.Status)

	_, err = s.Documents().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.ErrorIs(t, s.Documents().UpdateStatus(ctx, &domain.Document{ID: "missing"}), domain.ErrDocumentNotFound)
}

func TestStore_FindByHashNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Documents().Create(ctx, domain.NewDocument("old", "l", "h", "f", "", base)))
	require.NoError(t, s.Documents().Create(ctx, domain.NewDocument("new", "l", "h", "f", "", base.Add(time.Hour))))
	require.NoError(t, s.Documents().Create(ctx, domain.NewDocument("other", "l", "x", "f", "", base)))

	docs, err := s.Documents().FindByHash(ctx, "h")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)
}

func TestStore_ListAndParked(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Documents().Create(ctx, domain.NewDocument(id, "l", id, "f", "", base.Add(time.Duration(i)*time.Hour))))
	}
	failed, err := s.Documents().GetByID(ctx, "c")
	require.NoError(t, err)
	require.NoError(t, failed.Fail("boom", base.Add(3*time.Hour)))
	require.NoError(t, s.Documents().UpdateStatus(ctx, failed))

	all, err := s.Documents().List(ctx, usecase.DocumentFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	status := domain.StatusIngested
	ingested, err := s.Documents().List(ctx, usecase.DocumentFilter{Status: &status, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, ingested, 1)
	assert.Equal(t, "a", ingested[0].ID)

	parked, err := s.Documents().ListParked(ctx, base.Add(90*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, parked, 2)
	assert.Equal(t, "a", parked[0].ID)
}

func TestStore_TransactionsVisibleAfterCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	row := &domain.Transaction{ID: "t1", DocumentID: "doc-1", Description: "OXXO", Amount: decimal.NewFromInt(10), Type: domain.TransactionExpense}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Transactions().AppendBatch(ctx, tx, []*domain.Transaction{row}))

	rows, err := s.Transactions().ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, tx.Commit(ctx))
	rows, err = s.Transactions().ListByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "t1", rows[0].ID)
}

func TestStore_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Transactions().AppendBatch(ctx, tx, []*domain.Transaction{{ID: "t1", DocumentID: "d"}}))
	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, tx.Commit(ctx))

	rows, err := s.Transactions().ListByDocument(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_RejectsForeignTransaction(t *testing.T) {
	ctx := context.Background()
	tx, err := NewStore().Begin(ctx)
	require.NoError(t, err)

	err = NewStore().Transactions().AppendBatch(ctx, tx, nil)
	assert.ErrorIs(t, err, ErrForeignTransaction)
}
