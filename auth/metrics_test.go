package auth

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics()
	tags := map[string]string{"result": "ok"}

	m.IncCounter("test_auth_requests_total", tags)
	m.IncCounter("test_auth_requests_total", tags)
	m.IncCounter("test_auth_requests_total", map[string]string{"result": "invalid"})

	vec, registered := m.counters["test_auth_requests_total"]
	require.True(t, registered)
	assert.Equal(t, float64(2), testutil.ToFloat64(vec.With(tags)))

	m.ObserveHistogram("test_auth_duration_seconds", 0.25, tags)
	_, registered = m.histograms["test_auth_duration_seconds"]
	assert.True(t, registered)
}

func Test_NoopMetrics(t *testing.T) {
	// Must be safe with nil tags and never panic.
	m := &NoopMetrics{}
	m.IncCounter("anything", nil)
	m.ObserveHistogram("anything", 1, nil)
}
