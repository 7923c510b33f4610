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

func TestObserveReconcileCountsByOutcome(t *testing.T) {
	m := New()

	m.ObserveReconcile(3, 1, 2)
	m.ObserveReconcile(1, 0, 0)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.reconciledEntries.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciledEntries.WithLabelValues(OutcomeUnmatched)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconciledEntries.WithLabelValues(OutcomeNull)))
}

func TestCounters(t *testing.T) {
	m := New()

	m.IncMalformed()
	m.IncGamesRecorded()
	m.IncGamesRecorded()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.malformedPayloads))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.gamesRecorded))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveReconcile(1, 1, 1)
		m.IncMalformed()
		m.IncGamesRecorded()
		m.ObserveBalance(3, 1)
		m.ObserveRequest(http.MethodGet, "/api/v1/teams", http.StatusOK, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveBalance(2, 0)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "hcap_balance_repair_iterations")
}

func TestObserveRequestLabelsByRouteAndCode(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/v1/games/{id}", http.StatusNotFound, 2*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/games/{id}", http.StatusNotFound, 3*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/v1/games/{id}", http.StatusOK, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/v1/games/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/v1/games/{id}", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}
