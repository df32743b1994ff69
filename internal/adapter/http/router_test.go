package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/banky/internal/adapter/http/handler"
	apimiddleware "github.com/iho/banky/internal/adapter/http/middleware"
	"github.com/iho/banky/internal/adapter/repository/memory"
	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/infrastructure/metrics"
	"github.com/iho/banky/internal/infrastructure/storage"
	"github.com/iho/banky/internal/usecase"
)

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, string) error { return nil }

type seqIDs struct{ n int }

func (g *seqIDs) Generate() string {
	g.n++
	return "doc-" + strconv.Itoa(g.n)
}

func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	store := memory.NewStore()
	uploads, err := storage.NewLocalStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	documents := usecase.NewDocumentUseCase(store.Documents(), store.Transactions(), nil, 0, zerolog.Nop())
	ingest := usecase.NewIngestUseCase(store.Documents(), noopDispatcher{}, &seqIDs{}, m, zerolog.Nop())

	cfg := RouterConfig{
		DocumentHandler: handler.NewDocumentHandler(documents, ingest, uploads, 1<<20, zerolog.Nop()),
		HealthHandler:   handler.NewHealthHandler(),
		Metrics:         m,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "estado.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4\nstatement"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "1.2.3.4:1234"
	return req
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_UploadThenQuery(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected upload to be accepted, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), string(domain.StatusIngested)) {
		t.Fatalf("expected ingested document, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1/transactions", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected result of an ingested document to be not ready, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `banky_documents_ingested_total{outcome="created"} 1`) {
		t.Fatalf("expected ingest metric to be exported, got %s", rec.Body.String())
	}
}

func TestNewRouter_UploadLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(0.001, 1, nil)
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.UploadLimiter = rl
	}))

	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, uploadRequest(t))
	if rec1.Code == http.StatusTooManyRequests {
		t.Fatalf("expected first upload to pass the limiter")
	}

	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, uploadRequest(t))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second upload to be throttled, got %d", rec2.Code)
	}

	// Reads are not throttled.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected list to succeed, got %d", rec.Code)
		}
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/documents/",
		"GET /api/v1/documents/",
		"GET /api/v1/documents/{id}",
		"GET /api/v1/documents/{id}/transactions",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}
