package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intake_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	requestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intake_http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	})
)

// Metrics records Prometheus request metrics, labeled by the mux route
// template so path parameters do not explode cardinality.
func Metrics() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			requestsInFlight.Inc()
			defer requestsInFlight.Dec()

			rw := newResponseWriter(w)
			timer := prometheus.NewTimer(requestDuration.WithLabelValues(r.Method, route))
			next.ServeHTTP(rw, r)
			timer.ObserveDuration()

			requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		})
	}
}
