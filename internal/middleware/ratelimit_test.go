package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/intake/internal/config"
)

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, "0.1.0")
	handler := rl.Middleware()(protectedHandler())

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	// Burst allows two requests, the third is throttled.
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1234").Code)

	rec := do("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errObj["code"])

	// A different client has its own bucket.
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1234").Code)
}

func TestRateLimiterHonorsForwardedFor(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, "0.1.0")
	handler := rl.Middleware()(protectedHandler())

	do := func(forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "127.0.0.1:9999"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("203.0.113.5").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.5").Code)
	assert.Equal(t, http.StatusNoContent, do("203.0.113.6").Code)
}
