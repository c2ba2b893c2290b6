package observability

import (
	"strings"
	"testing"
	"time"
)

func TestEnabled(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"maybe", false},
	}
	for _, tc := range cases {
		t.Setenv("METRICS_ENABLED", tc.value)
		if got := Enabled(); got != tc.want {
			t.Errorf("Enabled() with METRICS_ENABLED=%q = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestCounterVecExposition(t *testing.T) {
	c := NewCounterVec("test_requests_total", "Test requests.", []string{"method", "status"})
	c.Inc("GET", "200")
	c.Inc("GET", "200")
	c.Inc("POST", "409")

	var b strings.Builder
	if err := c.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "# TYPE test_requests_total counter") {
		t.Fatalf("missing TYPE line in output:\n%s", out)
	}
	if !strings.Contains(out, `test_requests_total{method="GET",status="200"} 2.0`) {
		t.Errorf("missing GET counter in output:\n%s", out)
	}
	if !strings.Contains(out, `test_requests_total{method="POST",status="409"} 1.0`) {
		t.Errorf("missing POST counter in output:\n%s", out)
	}
}

func TestCounterVecMissingLabelValues(t *testing.T) {
	c := NewCounterVec("test_total", "Test.", []string{"a", "b"})
	c.Inc("only")

	var b strings.Builder
	if err := c.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(b.String(), `{a="only",b="unknown"}`) {
		t.Fatalf("missing label value should render as unknown:\n%s", b.String())
	}
}

func TestHistogramVecExposition(t *testing.T) {
	h := NewHistogramVec("test_duration_seconds", "Test latency.", []string{"op"}, []float64{0.1, 1})
	h.Observe(0.05, "write")
	h.Observe(0.5, "write")
	h.Observe(5, "write")

	var b strings.Builder
	if err := h.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()
	checks := []string{
		`test_duration_seconds_bucket{op="write",le="0.1"} 1`,
		`test_duration_seconds_bucket{op="write",le="1"} 2`,
		`test_duration_seconds_bucket{op="write",le="+Inf"} 3`,
		`test_duration_seconds_count{op="write"} 3`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestGaugeIncDec(t *testing.T) {
	g := NewGauge("test_inflight", "Test gauge.")
	g.Inc()
	g.Inc()
	g.Dec()

	var b strings.Builder
	if err := g.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(b.String(), "test_inflight 1.0") {
		t.Fatalf("gauge should read 1:\n%s", b.String())
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/sales", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveAggregateOperation("Sales.Sale", "ok", time.Millisecond)
	m.IncAggregateConflict("Sales.Sale")
	m.IncAggregateRetry("Sales.Sale")
	if err := m.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatalf("nil metrics WritePrometheus: %v", err)
	}
}

func TestEscapeLabel(t *testing.T) {
	got := escapeLabel("a\"b\\c\nd")
	want := "a\\\"b\\\\c\\nd"
	if got != want {
		t.Fatalf("escapeLabel = %q, want %q", got, want)
	}
}
