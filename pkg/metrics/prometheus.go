package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions  *prometheus.CounterVec
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New registers the recorder's collectors on reg; nil selects the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newssignal_predictions_total",
				Help: "Total number of headlines classified",
			},
			[]string{"source", "label"},
		),
		messagesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newssignal_messages_sent_total",
				Help: "Total number of prediction records sent to backend",
			},
			[]string{"backend", "source"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newssignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newssignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts one classified headline.
func (r *Recorder) RecordPrediction(source string, label models.Label) {
	r.predictions.WithLabelValues(source, label.String()).Inc()
}

// RecordMessageSent records a record sent to a backend.
func (r *Recorder) RecordMessageSent(backend, source string) {
	r.messagesSent.WithLabelValues(backend, source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

var _ domrepo.Metrics = (*Recorder)(nil)
