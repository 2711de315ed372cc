// Package metrics records summarization activity for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives summarization events.
type Recorder interface {
	// ChunkProcessed counts one chunk by outcome (summarized, skipped, fallback).
	ChunkProcessed(outcome string)
	// RequestCompleted records one whole-document summarization by status (ok, failed).
	RequestCompleted(status string, duration time.Duration)
}

// Noop discards all events.
type Noop struct{}

func (Noop) ChunkProcessed(string) {}
func (Noop) RequestCompleted(string, time.Duration) {}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	chunks   *prometheus.CounterVec
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewPrometheusRecorder registers its collectors with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		chunks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "summarizer_chunks_total",
			Help: "Chunks processed, by outcome.",
		}, []string{"outcome"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "summarizer_requests_total",
			Help: "Document summarizations, by status.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "summarizer_request_duration_seconds",
			Help:    "Time spent summarizing one document.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

func (p *PrometheusRecorder) ChunkProcessed(outcome string) {
	p.chunks.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) RequestCompleted(status string, duration time.Duration) {
	p.requests.WithLabelValues(status).Inc()
	p.duration.Observe(duration.Seconds())
}
