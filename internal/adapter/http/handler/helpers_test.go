package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/banky/internal/adapter/http/dto"
	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/infrastructure/storage"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"document not found", domain.ErrDocumentNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", domain.ErrDocumentNotFound), http.StatusNotFound},
		{"result not ready", domain.ErrResultNotReady, http.StatusConflict},
		{"invalid status filter", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"too large", storage.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"body limit", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "bad", "details")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "bad" || resp.Message != "details" {
		t.Fatalf("unexpected error response %+v", resp)
	}
}
