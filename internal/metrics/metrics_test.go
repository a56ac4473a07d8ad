package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionStarted()
	m.SessionEnded()
	m.Frame("mos")
	m.ProtocolError("arg_count")
	m.InputEvent("mouse_move")
	m.Multiplier(2)
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New()

	m.SessionStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionActive))
	m.SessionEnded()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionActive))

	m.Frame("mos")
	m.Frame("mos")
	m.Frame("X\x00Y")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("mos")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("other")))

	m.ProtocolError("arg_count")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.protocolErrors.WithLabelValues("arg_count")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.InputEvent("mouse_btn")
	m.Multiplier(4.2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `remotemouse_input_events_total{type="mouse_btn"} 1`))
	assert.True(t, strings.Contains(body, "remotemouse_accel_multiplier_count 1"))
}
