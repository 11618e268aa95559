package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// rotation generator.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	rotationsGenerated prometheus.Counter
	rotationsSkipped   prometheus.Counter
	rotationsFailed    prometheus.Counter
	generationRuns     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	rotationsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotations_generated_total",
		Help: "Rotations created by generation runs",
	})

	rotationsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotations_skipped_total",
		Help: "Roster entries skipped during generation",
	})

	rotationsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotations_failed_total",
		Help: "Roster entries that failed during generation",
	})

	generationRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rotation_generation_runs_total",
		Help: "Total rotation generation runs",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, rotationsGenerated, rotationsSkipped, rotationsFailed, generationRuns, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		rotationsGenerated: rotationsGenerated,
		rotationsSkipped:   rotationsSkipped,
		rotationsFailed:    rotationsFailed,
		generationRuns:     generationRuns,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordGeneration records the outcome counts of one generation run.
func (m *MetricsService) RecordGeneration(created, skipped, failed int) {
	if m == nil {
		return
	}
	m.generationRuns.Inc()
	m.rotationsGenerated.Add(float64(created))
	m.rotationsSkipped.Add(float64(skipped))
	m.rotationsFailed.Add(float64(failed))
}
