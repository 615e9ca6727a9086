package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pulse/internal/adapters/metrics"
)

func TestPrometheus_Counters(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.FrameEvaluated(2*time.Millisecond, false)
	m.FrameEvaluated(3*time.Millisecond, true)
	m.Recomputed("Sine", false)
	m.Recomputed("Sine", false)
	m.Recomputed("Shader", true)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.Compiled(10*time.Millisecond, false)
	m.Invalidated(3)
	m.Invalidated(0)

	expected := `
# HELP pulse_graph_recomputes_total Operator recomputes, by symbol and outcome
# TYPE pulse_graph_recomputes_total counter
pulse_graph_recomputes_total{failed="false",symbol="Sine"} 2
pulse_graph_recomputes_total{failed="true",symbol="Shader"} 1
# HELP pulse_resource_invalidated_total Resource entries invalidated by source changes
# TYPE pulse_resource_invalidated_total counter
pulse_resource_invalidated_total 3
# HELP pulse_frame_evaluated_total Frames evaluated, by outcome
# TYPE pulse_frame_evaluated_total counter
pulse_frame_evaluated_total{failed="false"} 1
pulse_frame_evaluated_total{failed="true"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"pulse_graph_recomputes_total", "pulse_resource_invalidated_total", "pulse_frame_evaluated_total"))

	count, err := testutil.GatherAndCount(m.Registry(), "pulse_resource_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheus_Handler(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.Compiled(time.Millisecond, true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pulse_resource_compiles_total{failed="true"} 1`)
}
