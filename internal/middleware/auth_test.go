package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/intake/internal/config"
)

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func callWithAuth(t *testing.T, auth *Auth, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/debug/latest", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	auth.Middleware()(protectedHandler()).ServeHTTP(rec, req)
	return rec
}

func TestAuthStaticTokens(t *testing.T) {
	auth := NewAuth(config.AuthConfig{Tokens: []string{"secret-1", "secret-2"}}, "0.1.0")

	t.Run("valid token passes", func(t *testing.T) {
		rec := callWithAuth(t, auth, "Bearer secret-2")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		rec := callWithAuth(t, auth, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		errObj, ok := payload["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "UNAUTHORIZED", errObj["code"])
	})

	t.Run("wrong scheme rejected", func(t *testing.T) {
		rec := callWithAuth(t, auth, "Basic secret-1")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		rec := callWithAuth(t, auth, "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthJWT(t *testing.T) {
	secret := "jwt-signing-secret"
	auth := NewAuth(config.AuthConfig{JWTSecret: secret}, "0.1.0")

	sign := func(t *testing.T, key string, exp time.Time) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "ops",
			"exp": exp.Unix(),
		})
		signed, err := token.SignedString([]byte(key))
		require.NoError(t, err)
		return signed
	}

	t.Run("valid jwt passes", func(t *testing.T) {
		rec := callWithAuth(t, auth, "Bearer "+sign(t, secret, time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("expired jwt rejected", func(t *testing.T) {
		rec := callWithAuth(t, auth, "Bearer "+sign(t, secret, time.Now().Add(-time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		rec := callWithAuth(t, auth, "Bearer "+sign(t, "other-secret", time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthNothingConfigured(t *testing.T) {
	auth := NewAuth(config.AuthConfig{}, "0.1.0")
	rec := callWithAuth(t, auth, "Bearer anything")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
