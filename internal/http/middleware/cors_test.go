package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodPost, "/api/receptionist/conversation", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	rec := httptest.NewRecorder()

	CORS([]string{"https://desk.example.com/"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, "https://desk.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Request-Id")
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://unknown.example")
	rec := httptest.NewRecorder()

	CORS([]string{"https://desk.example.com"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://random.example")
	rec := httptest.NewRecorder()

	CORS([]string{"*"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, "https://random.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSHandlesPreflight(t *testing.T) {
	var called bool
	req := httptest.NewRequest(http.MethodOptions, "/api/receptionist/conversation", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	CORS([]string{"https://desk.example.com"})(okHandler(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
