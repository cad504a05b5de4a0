package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP and document metrics of the server
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	cache     *prometheus.CounterVec
	documents *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcegraph",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "resourcegraph",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcegraph",
			Name:      "document_cache_lookups_total",
			Help:      "Rendered document cache lookups by result.",
		}, []string{"result"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcegraph",
			Name:      "documents_built_total",
			Help:      "JSON:API documents built by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.cache, m.documents} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware records request counts and latency. route labels the request;
// it should return a route pattern, not the raw path.
func (m *Metrics) Middleware(route func(*http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)
			next.ServeHTTP(rw, r)

			label := route(r)
			m.requests.WithLabelValues(label, strconv.Itoa(rw.statusCode)).Inc()
			m.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		})
	}
}

// CacheLookup counts a document cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

// DocumentBuilt counts a document build for kind ("resource", "collection",
// "related", "relationship"), labelled "error" when err is non-nil
func (m *Metrics) DocumentBuilt(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.documents.WithLabelValues(kind, outcome).Inc()
}
