package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ChunkProcessed("summarized")
	rec.ChunkProcessed("summarized")
	rec.ChunkProcessed("fallback")
	rec.RequestCompleted("ok", 200*time.Millisecond)

	if got := testutil.ToFloat64(rec.chunks.WithLabelValues("summarized")); got != 2 {
		t.Errorf("expected 2 summarized chunks, got %v", got)
	}
	if got := testutil.ToFloat64(rec.chunks.WithLabelValues("fallback")); got != 1 {
		t.Errorf("expected 1 fallback chunk, got %v", got)
	}
	if got := testutil.ToFloat64(rec.requests.WithLabelValues("ok")); got != 1 {
		t.Errorf("expected 1 ok request, got %v", got)
	}
	if n := testutil.CollectAndCount(rec.duration); n != 1 {
		t.Errorf("expected duration histogram to be collected, got %d", n)
	}
}

func TestNoop(t *testing.T) {
	var rec Recorder = Noop{}
	rec.ChunkProcessed("skipped")
	rec.RequestCompleted("failed", time.Second)
}
