package httpserver_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeguardian/nodeguardian/internal/httpserver"
)

func newTestServer(t *testing.T, ready httpserver.ReadinessCheck) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	srv := httpserver.New("127.0.0.1:0", reg, ready, logr.Discard())
	return srv.Handler()
}

func TestHealthz_AlwaysOK(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_ReflectsCheck(t *testing.T) {
	ready := false
	h := newTestServer(t, func() bool { return ready })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = true
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "nodeguardian_test_total"})
	counter.Inc()
	require.NoError(t, reg.Register(counter))

	srv := httpserver.New("127.0.0.1:0", reg, nil, logr.Discard())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nodeguardian_test_total 1")
}
