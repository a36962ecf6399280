// Package metrics exposes Prometheus collectors for the page analyzer service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for page_checks_total.
const (
	OutcomeSuccess    = "success"
	OutcomeFetchError = "fetch_error"
	OutcomeStoreError = "storage_error"
)

// Result labels for urls_registered_total.
const (
	ResultCreated = "created"
	ResultExisted = "existed"
	ResultInvalid = "invalid"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	pageChecksTotal            *prometheus.CounterVec
	pageFetchDurationSeconds   *prometheus.HistogramVec
	urlsRegisteredTotal        *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		pageChecksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_checks_total",
				Help: "Total number of page checks, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		pageFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "page_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"site"},
		)

		urlsRegisteredTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urls_registered_total",
				Help: "Total number of URL submissions, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObservePageCheck records the outcome of one check and how long its fetch took.
func ObservePageCheck(site, outcome string, fetchDuration time.Duration) {
	Init()
	pageChecksTotal.WithLabelValues(outcome).Inc()
	if fetchDuration > 0 {
		pageFetchDurationSeconds.WithLabelValues(SanitizeSite(site)).Observe(fetchDuration.Seconds())
	}
}

// ObserveURLRegistration increments the URL submission counter.
func ObserveURLRegistration(result string) {
	Init()
	urlsRegisteredTotal.WithLabelValues(result).Inc()
}
