package monitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	authEventsTotal     *prometheus.CounterVec
	authDurationSeconds *prometheus.HistogramVec
)

// InitPrometheusMetrics registers the recorder-path Prometheus metrics.
// Call once at startup; when never called (tests), observation is a no-op.
func InitPrometheusMetrics() {
	authEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authpulse",
			Name:      "auth_events_total",
			Help:      "Total number of recorded authentication events.",
		},
		[]string{"event", "provider", "success"},
	)
	authDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "authpulse",
			Name:      "auth_duration_seconds",
			Help:      "Histogram of authentication operation durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"event"},
	)
	prometheus.MustRegister(authEventsTotal, authDurationSeconds)
}

func observeEvent(metric Metric) {
	if authEventsTotal == nil {
		return
	}
	provider := metric.Provider
	if provider == "" {
		provider = unknownLabel
	}
	authEventsTotal.WithLabelValues(metric.Event, provider, strconv.FormatBool(metric.Success)).Inc()
	if metric.DurationMs != nil {
		authDurationSeconds.WithLabelValues(metric.Event).Observe(float64(*metric.DurationMs) / 1000.0)
	}
}
