package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for activation counters
const (
	OutcomeActivated = "activated"
	// OutcomeSwapped means the policy degraded to a plain swap because the
	// outgoing version had no active subscriptions
	OutcomeSwapped  = "swapped"
	OutcomeInactive = "inactive"
	OutcomeFailed   = "failed"
)

// Metrics holds the collectors exported on /metrics
type Metrics struct {
	activations     *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
	cacheRequests   *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil registerer yields a
// Metrics whose methods are no-ops.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	activations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_version_activations_total",
		Help: "Plan versions created, by activation policy and outcome.",
	}, []string{"policy", "outcome"})
	guardRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_status_guard_rejections_total",
		Help: "Archive requests rejected because subscriptions are still active.",
	}, []string{"entity"})
	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_cache_requests_total",
		Help: "Plan read cache lookups by result.",
	}, []string{"result"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(activations, guardRejections, cacheRequests, httpDuration)
	return &Metrics{
		activations:     activations,
		guardRejections: guardRejections,
		cacheRequests:   cacheRequests,
		httpDuration:    httpDuration,
	}
}

func (m *Metrics) IncActivation(policy, outcome string) {
	if m == nil || m.activations == nil {
		return
	}
	m.activations.WithLabelValues(normalizeLabel(policy), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncGuardRejection(entity string) {
	if m == nil || m.guardRejections == nil {
		return
	}
	m.guardRejections.WithLabelValues(normalizeLabel(entity)).Inc()
}

func (m *Metrics) IncCache(hit bool) {
	if m == nil || m.cacheRequests == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), status).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
