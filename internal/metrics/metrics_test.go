package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveTransition("accept", "")
	m.ObserveTransition("accept", "capacity_exceeded")
	m.ObserveTransition("accept", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("accept", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("accept", "capacity_exceeded")))

	m.ObserveGuardWait("local", time.Millisecond, true)
	m.ObserveQuery("find_positions_for", "", 3*time.Millisecond)
	m.ObserveCascade(4)

	n, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransition("withdraw", "")
		m.ObserveCascade(1)
		m.ObserveGuardWait("redis", time.Second, false)
		m.ObserveQuery("q", "", time.Second)
		m.ObserveHTTP("GET", "/", "200", time.Second)
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}
