package handler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/banky/internal/adapter/http/dto"
	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/infrastructure/storage"
	"github.com/iho/banky/internal/usecase"
)

const (
	uploadField     = "file"
	pdfContentType  = "application/pdf"
	multipartMemory = 8 << 20
)

// DocumentService defines the queries needed by DocumentHandler.
type DocumentService interface {
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, input usecase.ListDocumentsInput) ([]*domain.Document, error)
	GetResult(ctx context.Context, id string) (*usecase.DocumentResult, error)
}

// IngestService registers uploaded content.
type IngestService interface {
	Ingest(ctx context.Context, input usecase.IngestInput) (*usecase.IngestResult, error)
}

// UploadStore persists the uploaded bytes.
type UploadStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (*storage.StoredFile, error)
}

// DocumentHandler handles statement upload and query requests.
type DocumentHandler struct {
	documents     DocumentService
	ingest        IngestService
	store         UploadStore
	maxUploadSize int64
	logger        zerolog.Logger
}

// NewDocumentHandler creates a new DocumentHandler. maxUploadSize <= 0 leaves the body unbounded.
func NewDocumentHandler(documents DocumentService, ingest IngestService, store UploadStore, maxUploadSize int64, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents:     documents,
		ingest:        ingest,
		store:         store,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Upload stores a multipart PDF upload and schedules it for processing.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		// Leave room for the multipart envelope.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := mapDomainError(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeError(w, status, "invalid upload", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file", err.Error())
		return
	}
	defer file.Close()

	body := bufio.NewReader(file)
	if sniffed, _ := body.Peek(512); http.DetectContentType(sniffed) != pdfContentType {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported file type", "only PDF statements are accepted")
		return
	}

	filename := filepath.Base(header.Filename)
	stored, err := h.store.Save(r.Context(), filename, body)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to store upload", err.Error())
		return
	}

	res, err := h.ingest.Ingest(r.Context(), usecase.IngestInput{
		Locator:     stored.Locator,
		ContentHash: stored.ContentHash,
		Filename:    filename,
		ContentType: pdfContentType,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("filename", filename).Msg("ingest failed")
		writeError(w, mapDomainError(err), "failed to ingest document", err.Error())
		return
	}

	status := http.StatusAccepted
	if res.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.UploadFromResult(res))
}

// Get returns a document with its current status.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document ID", "")
		return
	}

	doc, err := h.documents.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get document", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentFromDomain(doc))
}

// List lists documents, newest first.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	req := dto.ListDocumentsFromQuery(r.URL.Query())

	docs, err := h.documents.ListDocuments(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list documents", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentsFromDomain(docs))
}

// Result returns the extracted transactions once they are visible.
func (h *DocumentHandler) Result(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document ID", "")
		return
	}

	res, err := h.documents.GetResult(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrResultNotReady) && !errors.Is(err, domain.ErrDocumentNotFound) {
			h.logger.Error().Err(err).Str("document_id", id).Msg("get result failed")
		}
		writeError(w, mapDomainError(err), "result not available", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResultFromUseCase(res))
}
