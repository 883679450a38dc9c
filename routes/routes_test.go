package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dcode-github/listing_analytics/analytics"
	"github.com/dcode-github/listing_analytics/controllers"
	"github.com/dcode-github/listing_analytics/metrics"
	"github.com/dcode-github/listing_analytics/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func newRouter() *mux.Router {
	h := &controllers.Handler{
		Aggregator: analytics.NewAggregator(analytics.NewMemoryStore()),
		Tokens:     utils.NewTokenIssuer("test-key", time.Minute),
	}
	router := mux.NewRouter()
	Routes(router, h, metrics.New())
	return router
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newRouter()
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/trigger"},
		{http.MethodPost, "/api/backup"},
		{http.MethodDelete, "/deleteproperty/65f000000000000000000000"},
		{http.MethodPatch, "/updateVerificationStatus"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
}

func TestPublicRoutes(t *testing.T) {
	router := newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics?groupBy=month&year=2025&month=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "listings_http_requests_total")
}
