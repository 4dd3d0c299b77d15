package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveSubmission("succeeded")
	m.ObserveSubmission("succeeded")
	m.ObservePrint("desktop", "failed")
	m.ObserveRequest(http.MethodGet, "/health", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.printAttempts.WithLabelValues("desktop", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/health", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSubmission("failed")
	m.ObservePrint("mobile", "sent")
	m.ObserveRequest(http.MethodPost, "/x", 500, time.Second)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObservePrint("mobile", "sent")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pos_gateway_print_attempts_total{channel="mobile",status="sent"} 1`)
}
