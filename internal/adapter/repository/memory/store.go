// Package memory keeps documents and transactions in process memory. It backs offline runs
// where no database is available.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/usecase"
)

// ErrForeignTransaction is returned when a write uses a transaction begun on another store.
var ErrForeignTransaction = errors.New("memory: transaction does not belong to this store")

// Store implements the document and transaction repositories and a transaction manager.
// Transactions are staged per database transaction and become visible on Commit.
type Store struct {
	mu           sync.RWMutex
	documents    map[string]*domain.Document
	transactions map[string][]*domain.Transaction
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		documents:    make(map[string]*domain.Document),
		transactions: make(map[string][]*domain.Transaction),
	}
}

// Documents returns the store as a DocumentRepository.
func (s *Store) Documents() usecase.DocumentRepository { return (*documentRepo)(s) }

// Transactions returns the store as a TransactionRepository.
func (s *Store) Transactions() usecase.TransactionRepository { return (*transactionRepo)(s) }

// Begin starts a staged write.
func (s *Store) Begin(_ context.Context) (usecase.Transaction, error) {
	return &tx{store: s}, nil
}

type tx struct {
	store  *Store
	staged []*domain.Transaction
	done   bool
}

func (t *tx) Commit(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, row := range t.staged {
		t.store.transactions[row.DocumentID] = append(t.store.transactions[row.DocumentID], row)
	}
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	t.done = true
	t.staged = nil
	return nil
}

type documentRepo Store

func copyDocument(d *domain.Document) *domain.Document {
	c := *d
	return &c
}

func (r *documentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[doc.ID] = copyDocument(doc)
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return copyDocument(doc), nil
}

func (r *documentRepo) FindByHash(_ context.Context, contentHash string) ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Document
	for _, doc := range r.documents {
		if doc.ContentHash == contentHash {
			out = append(out, copyDocument(doc))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *documentRepo) UpdateStatus(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[doc.ID]; !ok {
		return domain.ErrDocumentNotFound
	}
	r.documents[doc.ID] = copyDocument(doc)
	return nil
}

func (r *documentRepo) List(_ context.Context, filter usecase.DocumentFilter) ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Document
	for _, doc := range r.documents {
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		out = append(out, copyDocument(doc))
	}
	sortNewestFirst(out)
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *documentRepo) ListParked(_ context.Context, before time.Time, limit int) ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Document
	for _, doc := range r.documents {
		if !doc.Status.IsTerminal() && doc.UpdatedAt.Before(before) {
			out = append(out, copyDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return page(out, limit, 0), nil
}

type transactionRepo Store

func (r *transactionRepo) AppendBatch(_ context.Context, t usecase.Transaction, txs []*domain.Transaction) error {
	staged, ok := t.(*tx)
	if !ok || staged.store != (*Store)(r) {
		return ErrForeignTransaction
	}
	for _, row := range txs {
		c := *row
		staged.staged = append(staged.staged, &c)
	}
	return nil
}

func (r *transactionRepo) ListByDocument(_ context.Context, documentID string) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.transactions[documentID]
	out := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		c := *row
		out = append(out, &c)
	}
	return out, nil
}

func sortNewestFirst(docs []*domain.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}

func page(docs []*domain.Document, limit, offset int) []*domain.Document {
	if offset >= len(docs) {
		return nil
	}
	docs = docs[offset:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}
