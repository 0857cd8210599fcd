package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounter_Add(t *testing.T) {
	r := NewMetricsRegistry()
	c := r.NewCounter("test_counter", "help", nil)
	c.Inc()
	c.Add(2.5)
	if c.Value() != 3.5 {
		t.Fatalf("expected 3.5, got %f", c.Value())
	}
}

func TestGauge_Set(t *testing.T) {
	r := NewMetricsRegistry()
	g := r.NewGauge("test_gauge", "help", nil)
	g.Set(42)
	g.Set(7)
	if g.Value() != 7 {
		t.Fatalf("expected 7, got %f", g.Value())
	}
}

func TestDefaultBuckets(t *testing.T) {
	buckets := DefaultBuckets()
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			t.Fatal("buckets should be in ascending order")
		}
	}
}

func TestMetricsRegistry_Handler(t *testing.T) {
	r := NewMetricsRegistry()
	r.NewCounter("test_counter", "A test counter", nil).Inc()
	r.NewGauge("test_gauge", "A test gauge", nil).Set(42)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "test_counter 1\n") {
		t.Fatalf("expected test_counter sample, got:\n%s", body)
	}
	if !strings.Contains(body, "test_gauge 42\n") {
		t.Fatalf("expected test_gauge sample, got:\n%s", body)
	}
	if !strings.Contains(body, "# TYPE test_counter counter") {
		t.Fatal("expected TYPE comments")
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Fatalf("expected text/plain content type, got %s", ct)
	}
}

func TestMetricsWithLabels_Sorted(t *testing.T) {
	r := NewMetricsRegistry()
	r.NewCounter("http_requests", "HTTP requests", map[string]string{"path": "/api", "method": "POST"}).Inc()

	var b strings.Builder
	r.WritePrometheus(&b)
	if !strings.Contains(b.String(), `http_requests{method="POST",path="/api"} 1`) {
		t.Fatalf("unexpected output:\n%s", b.String())
	}
}

func TestHistogramOutput_Cumulative(t *testing.T) {
	r := NewMetricsRegistry()
	h := r.NewHistogram("request_duration", "Request duration", nil, []float64{0.1, 0.5, 1.0})
	h.Observe(0.05)
	h.Observe(0.3)
	h.Observe(0.8)
	h.Observe(3)

	var b strings.Builder
	r.WritePrometheus(&b)
	body := b.String()

	for _, want := range []string{
		`request_duration_bucket{le="0.1"} 1`,
		`request_duration_bucket{le="0.5"} 2`,
		`request_duration_bucket{le="1"} 3`,
		`request_duration_bucket{le="+Inf"} 4`,
		`request_duration_count 4`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
	if h.Count() != 4 {
		t.Fatalf("expected 4 observations, got %d", h.Count())
	}
}

func TestBuildMetrics_RecordBuild(t *testing.T) {
	m := NewBuildMetrics()
	m.RecordAssemble(9)
	m.RecordBuild(200*time.Millisecond, 3, 1024, nil)
	m.RecordBuild(time.Second, 0, 0, errors.New("boom"))

	if m.BuildsTotal.Value() != 2 {
		t.Fatalf("expected 2 builds, got %f", m.BuildsTotal.Value())
	}
	if m.BuildFailuresTotal.Value() != 1 {
		t.Fatalf("expected 1 failure, got %f", m.BuildFailuresTotal.Value())
	}
	if m.AssetsEmitted.Value() != 3 {
		t.Fatalf("failed build must not reset asset gauge, got %f", m.AssetsEmitted.Value())
	}
	if m.PluginsAssembled.Value() != 9 {
		t.Fatalf("expected 9 plugins, got %f", m.PluginsAssembled.Value())
	}
	if m.BuildDuration.Count() != 2 {
		t.Fatalf("expected 2 duration samples, got %d", m.BuildDuration.Count())
	}
}

func TestGlobalMetrics(t *testing.T) {
	if Metrics() != Metrics() {
		t.Fatal("expected the same instance")
	}
}
