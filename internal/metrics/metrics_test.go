package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.IncActivation("grandfather_active", OutcomeActivated)
	m.IncActivation("grandfather_active", OutcomeActivated)
	m.IncActivation("", OutcomeSwapped)
	m.IncGuardRejection("plan")
	m.IncCache(true)
	m.IncCache(false)
	m.ObserveHTTP("GET", "/v1/plans", "200", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.activations.WithLabelValues("grandfather_active", OutcomeActivated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activations.WithLabelValues("unknown", OutcomeSwapped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.guardRejections.WithLabelValues("plan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("hit")))

	n, err := testutil.GatherAndCount(reg, "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewMetrics(nil)
	assert.NotPanics(t, func() {
		m.IncActivation("x", OutcomeFailed)
		m.IncGuardRejection("plan_version")
		m.IncCache(true)
		m.ObserveHTTP("GET", "/", "200", time.Second)
	})

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.IncGuardRejection("plan") })
}
