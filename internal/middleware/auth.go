package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/caseflow/intake/internal/config"
	svcerr "github.com/caseflow/intake/internal/errors"
)

// Auth guards routes with bearer credentials: either one of the configured
// static tokens or an HS256 JWT signed with the shared secret.
type Auth struct {
	tokens    []string
	jwtSecret []byte
	version   string
}

// NewAuth creates an auth guard. With no tokens and no secret configured,
// every request is rejected.
func NewAuth(cfg config.AuthConfig, version string) *Auth {
	return &Auth{tokens: cfg.Tokens, jwtSecret: []byte(cfg.JWTSecret), version: version}
}

// Middleware rejects requests without a valid bearer credential.
func (a *Auth) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeServiceError(w, a.version, svcerr.Unauthorized("missing bearer token"))
				return
			}
			if !a.valid(token) {
				writeServiceError(w, a.version, svcerr.Unauthorized("invalid token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) valid(token string) bool {
	for _, t := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			return true
		}
	}
	if len(a.jwtSecret) == 0 {
		return false
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	return err == nil && parsed.Valid
}
