package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/usecase"
)

var _ usecase.PipelineMetrics = (*Metrics)(nil)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.PipelineRuns == nil || m.HTTPRequests == nil || m.StageDuration == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.SetParked(0)
	m.SetQueueDepth(0)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestPipelineMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordIngest(usecase.IngestCreated)
	m.RecordIngest(usecase.IngestCreated)
	m.RecordIngest(usecase.IngestCached)
	m.RecordOutcome(domain.StatusDone)
	m.RecordFailure(domain.FailureValidation)
	m.RecordOpticalFallback()
	m.AddTransactions(12)
	m.AddTransactions(0)
	m.ObserveStage(domain.StageParse, 250*time.Millisecond)
	m.SetParked(3)
	m.SetQueueDepth(7)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"ingest created", testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("created")), 2},
		{"ingest cached", testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("cached")), 1},
		{"runs done", testutil.ToFloat64(m.PipelineRuns.WithLabelValues("DONE")), 1},
		{"validation failures", testutil.ToFloat64(m.StageFailures.WithLabelValues("validation")), 1},
		{"optical fallbacks", testutil.ToFloat64(m.OpticalFallbacks), 1},
		{"transactions", testutil.ToFloat64(m.TransactionsPersisted), 12},
		{"parked", testutil.ToFloat64(m.ParkedDocuments), 3},
		{"queue depth", testutil.ToFloat64(m.QueueDepth), 7},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}

	if n := testutil.CollectAndCount(m.StageDuration); n != 1 {
		t.Fatalf("expected one stage series, got %d", n)
	}
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()
	New(registry)
}
