package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.PollCycle("empty", 0, 0, false)
	m.BriefingRun(nil, time.Second)
}

func TestPollCycle(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.PollCycle("advanced", 3, 103, true)
	m.PollCycle("empty", 0, 0, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.pollCycles.WithLabelValues("advanced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pollCycles.WithLabelValues("empty")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.updatesFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.triggers))
	assert.Equal(t, 103.0, testutil.ToFloat64(m.cursor), "empty cycles leave the gauge alone")
}

func TestBriefingRun(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BriefingRun(nil, 2*time.Second)
	m.BriefingRun(errors.New("boom"), time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.briefingRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.briefingRuns.WithLabelValues("failure")))
}
