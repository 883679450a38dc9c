package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dcode-github/listing_analytics/controllers"
	"github.com/dcode-github/listing_analytics/metrics"
	"github.com/dcode-github/listing_analytics/utils"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-key", time.Minute)
	var seen string
	protected := AuthMiddleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(controllers.UserIDKey).(string)
		w.WriteHeader(http.StatusNoContent)
	}))

	valid, err := tokens.Generate("agent-7")
	require.NoError(t, err)
	other, err := utils.NewTokenIssuer("other-key", time.Minute).Generate("agent-7")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "Missing Authorization header"},
		{"not bearer", "Token " + valid, http.StatusUnauthorized, "Invalid Authorization header format"},
		{"wrong key", "Bearer " + other, http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", "Bearer " + valid, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/deleteproperty/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.JSONEq(t, `{"message":"`+tt.body+`"}`, rec.Body.String())
			}
		})
	}
	assert.Equal(t, "agent-7", seen)
}

func TestRequestLogger(t *testing.T) {
	m := metrics.New()
	router := mux.NewRouter()
	router.Use(RequestLogger(m))
	router.HandleFunc("/property/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/property/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/property/def", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))

	n, err := testutil.GatherAndCount(m.Registry(), "listings_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "both requests share the route template label")
}
