// Package middleware provides the HTTP middleware chain: request logging,
// metrics, CORS, per-client rate limiting and bearer auth for the debug
// surface.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	svcerr "github.com/caseflow/intake/internal/errors"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		Version   string `json:"version"`
		Timestamp string `json:"timestamp"`
	} `json:"meta"`
}

func writeServiceError(w http.ResponseWriter, version string, e *svcerr.ServiceError) {
	var env errorEnvelope
	env.Error.Code = e.Code
	env.Error.Message = e.Message
	env.Meta.Version = version
	env.Meta.Timestamp = time.Now().UTC().Format(timestampLayout)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPStatus)
	_ = json.NewEncoder(w).Encode(env)
}

// clientIP extracts the caller address, honoring X-Forwarded-For from a
// fronting proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
