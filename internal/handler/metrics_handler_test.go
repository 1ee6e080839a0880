package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/service"
)

type pingStub struct{ err error }

func (p pingStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]Pinger{"postgres": pingStub{}, "redis": pingStub{}})
	c, w := newContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready"`)

	h = NewMetricsHandler(nil, map[string]Pinger{"postgres": pingStub{err: errors.New("connection refused")}})
	c, w = newContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordTransition("submit", "PENDING")
	h := NewMetricsHandler(metrics, nil)

	c, w := newContext(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mentorship_transitions_total")

	c, w = newContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsHandlerHealth(t *testing.T) {
	c, w := newContext(http.MethodGet, "/health", nil)
	NewMetricsHandler(nil, nil).Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
