package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Claim outcomes recorded by RecordExtraCreditClaim.
const (
	ClaimOutcomeAwarded        = "awarded"
	ClaimOutcomeAlreadyClaimed = "already_claimed"
	ClaimOutcomeRejected       = "rejected"
	ClaimOutcomeError          = "error"
)

// MetricsService encapsulates Prometheus instrumentation. All methods are safe
// on a nil receiver.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	classifierDuration *prometheus.HistogramVec
	analysesTotal      *prometheus.CounterVec
	alertsTotal        *prometheus.CounterVec
	claimsTotal        *prometheus.CounterVec
	activeSessions     prometheus.Gauge
}

// NewMetricsService registers the collectors on a private registry.
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

	classifierDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classifier_request_duration_seconds",
		Help:    "Latency of classifier calls by model and outcome",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"model", "outcome"})

	analysesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_analyses_total",
		Help: "Completed analyses by mental-health mode and whether suicidal risk was flagged",
	}, []string{"mode", "flagged"})

	alertsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_alerts_total",
		Help: "Alert sealing attempts by result (sealed, disabled, failed)",
	}, []string{"result"})

	claimsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_extra_credit_claims_total",
		Help: "Extra-credit claims by outcome",
	}, []string{"outcome"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "therapist_sessions_active",
		Help: "Therapist sessions currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, classifierDuration, analysesTotal, alertsTotal, claimsTotal, activeSessions, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		classifierDuration: classifierDuration,
		analysesTotal:      analysesTotal,
		alertsTotal:        alertsTotal,
		claimsTotal:        claimsTotal,
		activeSessions:     activeSessions,
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

// Registry returns the private registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveClassifier records one classifier call.
func (m *MetricsService) ObserveClassifier(model string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.classifierDuration.WithLabelValues(model, outcome).Observe(duration.Seconds())
}

// RecordAnalysis counts a completed analysis.
func (m *MetricsService) RecordAnalysis(multiLabel, flagged bool) {
	if m == nil {
		return
	}
	mode := "single_label"
	if multiLabel {
		mode = "multi_label"
	}
	m.analysesTotal.WithLabelValues(mode, fmt.Sprintf("%t", flagged)).Inc()
}

// RecordAlert counts a sealing attempt.
func (m *MetricsService) RecordAlert(result string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(result).Inc()
}

// RecordExtraCreditClaim counts a claim by outcome.
func (m *MetricsService) RecordExtraCreditClaim(outcome string) {
	if m == nil {
		return
	}
	m.claimsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions reports the size of the session table.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
