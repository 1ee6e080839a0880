package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceExposesEngineCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/mentorship/request/:alumniId", http.StatusCreated, 12*time.Millisecond)
	m.ObserveTx("submit", 3*time.Millisecond)
	m.RecordTransition("accept", "ACCEPTED")
	m.RecordPush("published")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="POST",path="/api/v1/mentorship/request/:alumniId",status="201"} 1`)
	assert.Contains(t, body, `mentorship_tx_duration_seconds_count{operation="submit"} 1`)
	assert.Contains(t, body, `mentorship_transitions_total{operation="accept",status="ACCEPTED"} 1`)
	assert.Contains(t, body, `notification_push_total{outcome="published"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveTx("accept", time.Millisecond)
		m.RecordTransition("reject", "REJECTED")
		m.RecordPush("failed")
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
