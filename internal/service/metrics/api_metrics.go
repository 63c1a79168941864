package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newssignal",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of prediction endpoints",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newssignal",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by prediction endpoint",
		},
		[]string{"endpoint"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newssignal",
			Subsystem: "api",
			Name:      "cache_lookups_total",
			Help:      "Prediction cache lookups by result",
		},
		[]string{"result"},
	)
)

// Register adds the API collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(APILatency, APIErrors, CacheLookups)
	})
}
