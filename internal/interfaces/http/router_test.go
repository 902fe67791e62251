package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/molscreen/internal/interfaces/http/handlers"
	"github.com/turtacn/molscreen/internal/interfaces/http/middleware"
)

func TestNewRouter_HealthAndFallthrough(t *testing.T) {
	r := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil, nil),
		Mode:          "test",
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Correlation id is stamped on every response.
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_NilHandlersLeaveRoutesOff(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: "test"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/search/exact", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: "test"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/molecules", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
