package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUpstreamMetricsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUpstreamMetrics(reg)

	m.IncRequest("auth.login", "2xx")
	m.IncRequest("auth.login", "2xx")
	m.IncRequest("auth.login", "4xx")
	m.ObserveDuration("auth.login", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("auth.login", "2xx")); got != 2 {
		t.Fatalf("expected 2 successful calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("auth.login", "4xx")); got != 1 {
		t.Fatalf("expected 1 failed call, got %v", got)
	}
}

func TestUpstreamMetricsNilSafe(t *testing.T) {
	var m *UpstreamMetrics
	m.IncRequest("auth.verify", "5xx")
	m.ObserveDuration("auth.verify", time.Second)

	empty := NewUpstreamMetrics(nil)
	empty.IncRequest("", "")
	empty.ObserveDuration("", 0)
}
