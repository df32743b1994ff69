package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/banky/internal/adapter/http/dto"
	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/infrastructure/storage"
	"github.com/iho/banky/internal/usecase"
)

type documentServiceStub struct {
	getFn    func(ctx context.Context, id string) (*domain.Document, error)
	listFn   func(ctx context.Context, input usecase.ListDocumentsInput) ([]*domain.Document, error)
	resultFn func(ctx context.Context, id string) (*usecase.DocumentResult, error)
}

func (s *documentServiceStub) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.getFn(ctx, id)
}

func (s *documentServiceStub) ListDocuments(ctx context.Context, input usecase.ListDocumentsInput) ([]*domain.Document, error) {
	return s.listFn(ctx, input)
}

func (s *documentServiceStub) GetResult(ctx context.Context, id string) (*usecase.DocumentResult, error) {
	return s.resultFn(ctx, id)
}

type ingestServiceStub struct {
	captured usecase.IngestInput
	result   *usecase.IngestResult
	err      error
}

func (s *ingestServiceStub) Ingest(_ context.Context, input usecase.IngestInput) (*usecase.IngestResult, error) {
	s.captured = input
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	doc := domain.NewDocument("doc-1", input.Locator, input.ContentHash, input.Filename, input.ContentType, time.Now().UTC())
	return &usecase.IngestResult{Document: doc, Dispatched: true}, nil
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newUploadHandler(t *testing.T, ingest IngestService, maxSize int64) *DocumentHandler {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), maxSize)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewDocumentHandler(&documentServiceStub{}, ingest, store, maxSize, zerolog.Nop())
}

func TestDocumentHandler_Upload_Success(t *testing.T) {
	ingest := &ingestServiceStub{}
	h := newUploadHandler(t, ingest, 1<<20)

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "../../estado.pdf", []byte("%PDF-1.4\nstatement body")))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	if ingest.captured.Filename != "estado.pdf" {
		t.Fatalf("expected filename to be stripped of directories, got %q", ingest.captured.Filename)
	}
	if ingest.captured.ContentHash == "" || ingest.captured.Locator == "" {
		t.Fatalf("expected stored locator and hash, got %+v", ingest.captured)
	}

	var resp dto.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DocumentID != "doc-1" || resp.Status != "INGESTED" || !resp.Dispatched {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDocumentHandler_Upload_CachedReturns200(t *testing.T) {
	doc := domain.NewDocument("done-1", "/data/a.pdf", "abc", "estado.pdf", "", time.Now().UTC())
	ingest := &ingestServiceStub{result: &usecase.IngestResult{Document: doc, Cached: true}}
	h := newUploadHandler(t, ingest, 0)

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "estado.pdf", []byte("%PDF-1.7 same bytes")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDocumentHandler_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		maxSize int64
		want    int
	}{
		{
			name: "not a pdf",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "photo.pdf", []byte("\x89PNG\r\n\x1a\nnot a statement"))
			},
			want: http.StatusUnsupportedMediaType,
		},
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				var body bytes.Buffer
				mw := multipart.NewWriter(&body)
				mw.WriteField("other", "value")
				mw.Close()
				req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				return req
			},
			want: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader([]byte("{}")))
			},
			want: http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "big.pdf", append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 64)...))
			},
			maxSize: 16,
			want:    http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingest := &ingestServiceStub{}
			h := newUploadHandler(t, ingest, tt.maxSize)

			rec := httptest.NewRecorder()
			h.Upload(rec, tt.req(t))

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if ingest.captured.Locator != "" {
				t.Fatalf("expected ingest not to be called")
			}
		})
	}
}

func TestDocumentHandler_Get(t *testing.T) {
	h := NewDocumentHandler(&documentServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Document, error) {
			if id != "doc-1" {
				return nil, domain.ErrDocumentNotFound
			}
			return domain.NewDocument("doc-1", "/data/a.pdf", "abc", "estado.pdf", "", time.Now().UTC()), nil
		},
	}, nil, nil, 0, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Get(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1", nil), "doc-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope", nil), "nope"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDocumentHandler_List(t *testing.T) {
	var captured usecase.ListDocumentsInput
	h := NewDocumentHandler(&documentServiceStub{
		listFn: func(ctx context.Context, input usecase.ListDocumentsInput) ([]*domain.Document, error) {
			captured = input
			if input.Status == "BOGUS" {
				return nil, domain.ErrInvalidStatus
			}
			return []*domain.Document{}, nil
		},
	}, nil, nil, 0, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents?status=done&limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Status != "done" || captured.Limit != 5 {
		t.Fatalf("unexpected input %+v", captured)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Fatalf("expected empty json array, got %s", body)
	}

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents?status=BOGUS", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDocumentHandler_Result(t *testing.T) {
	doc := domain.NewDocument("doc-1", "/data/a.pdf", "abc", "estado.pdf", "", time.Now().UTC())
	h := NewDocumentHandler(&documentServiceStub{
		resultFn: func(ctx context.Context, id string) (*usecase.DocumentResult, error) {
			switch id {
			case "doc-1":
				return &usecase.DocumentResult{
					Document:     doc,
					Transactions: []*domain.Transaction{{ID: "t1", Amount: decimal.NewFromInt(10), Type: domain.TransactionIncome}},
					TotalIncome:  decimal.NewFromInt(10),
				}, nil
			case "running":
				return nil, domain.ErrResultNotReady
			default:
				return nil, domain.ErrDocumentNotFound
			}
		},
	}, nil, nil, 0, zerolog.Nop())

	tests := []struct {
		id   string
		want int
	}{
		{"doc-1", http.StatusOK},
		{"running", http.StatusConflict},
		{"missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Result(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+tt.id+"/transactions", nil), tt.id))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
