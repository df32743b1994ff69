package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/usecase"
)

func TestDocumentFromDomain(t *testing.T) {
	now := time.Now().UTC()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	msg := "no transactions found"

	doc := domain.NewDocument("doc-1", "/data/a.pdf", "abc", "estado.pdf", "application/pdf", now)
	doc.BankCode = "SANTANDER"
	doc.PeriodStart = &start
	doc.PeriodEnd = &end
	doc.Error = &msg

	resp := DocumentFromDomain(doc)
	if resp.ID != "doc-1" || resp.Status != "INGESTED" || resp.Bank != "SANTANDER" {
		t.Fatalf("unexpected document response: %+v", resp)
	}
	if resp.PeriodStart == nil || *resp.PeriodStart != "2024-01-01" || *resp.PeriodEnd != "2024-01-31" {
		t.Fatalf("unexpected period: %v %v", resp.PeriodStart, resp.PeriodEnd)
	}
	if resp.Error == nil || *resp.Error != msg {
		t.Fatalf("expected error to be carried over")
	}

	list := DocumentsFromDomain([]*domain.Document{doc})
	if len(list) != 1 || list[0].ID != doc.ID {
		t.Fatalf("DocumentsFromDomain returned %+v", list)
	}
}

func TestResultFromUseCase(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	doc := domain.NewDocument("doc-1", "/data/a.pdf", "abc", "estado.pdf", "", time.Now().UTC())
	doc.BankCode = "BBVA"

	res := ResultFromUseCase(&usecase.DocumentResult{
		Document: doc,
		Transactions: []*domain.Transaction{
			{ID: "t1", Date: &date, Description: "PAGO", Amount: decimal.RequireFromString("150.50"), Currency: "MXN", Type: domain.TransactionExpense},
			{ID: "t2", Description: "ABONO", Amount: decimal.RequireFromString("1000"), Currency: "MXN", Type: domain.TransactionIncome},
		},
		TotalIncome:  decimal.RequireFromString("1000"),
		TotalExpense: decimal.RequireFromString("150.50"),
	})

	if res.Document != "estado.pdf" || res.Bank != "BBVA" || len(res.Transactions) != 2 {
		t.Fatalf("unexpected result response: %+v", res)
	}
	if res.Transactions[0].Date == nil || *res.Transactions[0].Date != "2024-01-05" {
		t.Fatalf("unexpected date %v", res.Transactions[0].Date)
	}
	if res.Transactions[1].Date != nil {
		t.Fatalf("expected undated record to keep a null date")
	}

	body, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"amount":"150.5"`) || !strings.Contains(string(body), `"date":null`) {
		t.Fatalf("unexpected json %s", body)
	}
}

func TestUploadFromResult(t *testing.T) {
	doc := domain.NewDocument("doc-1", "/data/a.pdf", "abc", "estado.pdf", "", time.Now().UTC())

	resp := UploadFromResult(&usecase.IngestResult{Document: doc, Dispatched: true})
	if resp.DocumentID != "doc-1" || resp.Status != "INGESTED" || resp.Cached || !resp.Dispatched {
		t.Fatalf("unexpected upload response: %+v", resp)
	}
}
