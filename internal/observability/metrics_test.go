package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveScanRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewScoutCollector(reg)
	if err != nil {
		t.Fatalf("NewScoutCollector: %v", err)
	}

	collector.ObserveScan("parallel", "complete", 1000, 250*time.Millisecond)
	collector.SetActiveLines(48)

	if got := testutil.ToFloat64(collector.ScansTotal.WithLabelValues("parallel", "complete")); got != 1 {
		t.Fatalf("scout_scans_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CandidatesProcessed); got != 1000 {
		t.Fatalf("scout_candidates_processed_total = %v, want 1000", got)
	}
	if got := testutil.ToFloat64(collector.ActiveLines); got != 48 {
		t.Fatalf("scout_active_lines = %v, want 48", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var histogram *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "scout_scan_duration_seconds" {
			histogram = mf
		}
	}
	if histogram == nil {
		t.Fatalf("scout_scan_duration_seconds not gathered")
	}
	if histogram.GetType() != dto.MetricType_HISTOGRAM {
		t.Fatalf("scout_scan_duration_seconds type = %v, want histogram", histogram.GetType())
	}
	if count := histogram.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
		t.Fatalf("duration sample count = %d, want 1", count)
	}
}

func TestObserveScanCancelledOmitsProcessed(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewScoutCollector(reg)
	if err != nil {
		t.Fatalf("NewScoutCollector: %v", err)
	}

	collector.ObserveScan("sequential", "cancelled", 0, 5*time.Millisecond)

	if got := testutil.ToFloat64(collector.ScansTotal.WithLabelValues("sequential", "cancelled")); got != 1 {
		t.Fatalf("scout_scans_total{cancelled} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CandidatesProcessed); got != 0 {
		t.Fatalf("scout_candidates_processed_total = %v, want 0", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewScoutCollector(reg)
	if err != nil {
		t.Fatalf("NewScoutCollector: %v", err)
	}
	collector.ObserveScan("sequential", "complete", 10, time.Millisecond)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "scout_scans_total") {
		t.Fatalf("metrics output missing scout_scans_total")
	}
}

func TestDuplicateRegistrationTolerated(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewScoutCollector(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewScoutCollector(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
