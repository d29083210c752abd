package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/internal/importer"
	"github.com/ginjaninja78/oc-consolidator/pkg/metrics"
)

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	reg := prometheus.NewRegistry()
	m := metrics.NewImportMetrics(reg)
	m.AddOutcomes("created", 2)

	return NewRouter(Dependencies{
		Config:   cfg,
		Importer: importer.New(cfg, importer.WithMetrics(m)),
		Gatherer: reg,
	})
}

func TestHealthAndRequestID(t *testing.T) {
	h := newTestRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "occ_upsert_outcomes_total")
}

func TestOrderRoutesWithoutStore(t *testing.T) {
	h := newTestRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders/OC-1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "DEPENDENCY_ERROR")
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
