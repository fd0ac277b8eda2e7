// Package metrics provides Prometheus instrumentation for the poster service.
//
// Exposed metrics:
//
//	posteria_upstream_requests_total           counter by provider and outcome
//	posteria_upstream_request_duration_seconds histogram by provider
//	posteria_cache_lookups_total               counter by layer and result
//	posteria_http_requests_total               counter by method, route and status
//	posteria_http_request_duration_seconds     histogram by method and route
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for upstream requests
const (
	OutcomeSuccess = "success"
	OutcomeStatus  = "bad_status"
	OutcomeError   = "error"
)

// UpstreamRequests counts outbound provider calls
var UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posteria_upstream_requests_total",
	Help: "Outbound provider requests by provider and outcome.",
}, []string{"provider", "outcome"})

// UpstreamDuration tracks outbound provider latency
var UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "posteria_upstream_request_duration_seconds",
	Help:    "Outbound provider request latency in seconds.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"provider"})

// CacheLookups counts payload cache lookups by layer (request, shared)
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posteria_cache_lookups_total",
	Help: "Payload cache lookups by layer and result.",
}, []string{"layer", "result"})

// HTTPRequests counts inbound requests
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posteria_http_requests_total",
	Help: "Inbound HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks inbound request latency
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "posteria_http_request_duration_seconds",
	Help:    "Inbound HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// ObserveUpstream records one finished outbound request
func ObserveUpstream(provider, outcome string, d time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	UpstreamDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveCache records one cache lookup
func ObserveCache(layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(layer, result).Inc()
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency. The route label is the mux
// path template so ids in the URL do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := routeTemplate(r)
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
