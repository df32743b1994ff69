package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/banky/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	DocumentsIngested     *prometheus.CounterVec
	PipelineRuns          *prometheus.CounterVec
	StageDuration         *prometheus.HistogramVec
	StageFailures         *prometheus.CounterVec
	TransactionsPersisted prometheus.Counter
	OpticalFallbacks      prometheus.Counter

	// Worker metrics
	ParkedDocuments prometheus.Gauge
	QueueDepth      prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Pipeline metrics
		DocumentsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banky_documents_ingested_total",
				Help: "Uploaded documents by ingest outcome (created, cached, in_flight)",
			},
			[]string{"outcome"},
		),
		PipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banky_pipeline_runs_total",
				Help: "Pipeline runs by final document status",
			},
			[]string{"status"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banky_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"stage"},
		),
		StageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banky_stage_failures_total",
				Help: "Documents moved to FAILED by failure kind",
			},
			[]string{"kind"},
		),
		TransactionsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "banky_transactions_persisted_total",
			Help: "Total number of transactions written",
		}),
		OpticalFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "banky_optical_fallbacks_total",
			Help: "Documents that needed optical character recognition",
		}),

		// Worker metrics
		ParkedDocuments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "banky_parked_documents",
			Help: "Documents stuck in a non-terminal status at the last sweep",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "banky_worker_queue_depth",
			Help: "Documents waiting for a worker",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banky_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banky_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "banky_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banky_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

func (m *Metrics) ObserveStage(stage domain.Stage, d time.Duration) {
	m.StageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (m *Metrics) RecordOutcome(status domain.DocumentStatus) {
	m.PipelineRuns.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) RecordFailure(kind domain.FailureKind) {
	m.StageFailures.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) RecordOpticalFallback() {
	m.OpticalFallbacks.Inc()
}

func (m *Metrics) AddTransactions(n int) {
	if n > 0 {
		m.TransactionsPersisted.Add(float64(n))
	}
}

func (m *Metrics) RecordIngest(outcome string) {
	m.DocumentsIngested.WithLabelValues(outcome).Inc()
}

// SetParked records the result of the last parked-document sweep.
func (m *Metrics) SetParked(n int) {
	m.ParkedDocuments.Set(float64(n))
}

func (m *Metrics) SetQueueDepth(n int) {
	m.QueueDepth.Set(float64(n))
}
