package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteors_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meteors_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteors_neows_requests_total",
			Help: "Total number of requests made to NASA NeoWs.",
		},
		[]string{"endpoint", "outcome"},
	)

	upstreamDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meteors_neows_duration_seconds",
			Help:    "NeoWs request duration in seconds, including rate limiter wait.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	feedObjectCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meteors_feed_objects",
			Help: "Number of close approaches in the current feed dataset.",
		},
	)

	feedAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meteors_feed_age_seconds",
			Help: "Age of the current feed dataset in seconds.",
		},
	)

	deflectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteors_deflection_calculations_total",
			Help: "Deflection calculations by outcome.",
		},
		[]string{"outcome"},
	)

	deltaVMetersPerSecond = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meteors_deflection_delta_v_ms",
			Help:    "Required delta-v of computed deflections in m/s.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	assessmentDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meteors_assessment_duration_seconds",
			Help:    "Duration of a batch assessment of hazardous feed objects.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		upstreamRequestsTotal,
		upstreamDurationSeconds,
		feedObjectCount,
		feedAgeSeconds,
		deflectionsTotal,
		deltaVMetersPerSecond,
		assessmentDurationSeconds,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordUpstream records a single NeoWs request.
func RecordUpstream(endpoint, outcome string, d time.Duration) {
	upstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	upstreamDurationSeconds.WithLabelValues(endpoint).Observe(d.Seconds())
}

// SetFeedObjectCount sets the number of approaches in the current feed.
func SetFeedObjectCount(n int) {
	feedObjectCount.Set(float64(n))
}

// SetFeedAge sets the age of the current feed in seconds.
func SetFeedAge(seconds float64) {
	feedAgeSeconds.Set(seconds)
}

// RecordDeflection counts a deflection outcome ("not_required", "required",
// "invalid_input", "degenerate_orbit"). deltaV is observed only for "required".
func RecordDeflection(outcome string, deltaV float64) {
	deflectionsTotal.WithLabelValues(outcome).Inc()
	if outcome == "required" {
		deltaVMetersPerSecond.Observe(deltaV)
	}
}

// RecordAssessment records the duration of one batch assessment.
func RecordAssessment(d time.Duration) {
	assessmentDurationSeconds.Observe(d.Seconds())
}

var knownRoutes = map[string]bool{
	"/":                        true,
	"/app.js":                  true,
	"/styles.css":              true,
	"/healthz":                 true,
	"/readyz":                  true,
	"/metrics":                 true,
	"/api/v1/feed":             true,
	"/api/v1/feed/refresh":     true,
	"/api/v1/feed/assessments": true,
	"/api/v1/sim":              true,
	"/api/v1/deflection":       true,
}

// normalizeRoute maps a request path to a bounded set of metric labels.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if id, ok := strings.CutPrefix(path, "/api/v1/neo/"); ok && id != "" && !strings.Contains(id, "/") {
		return "/api/v1/neo/{id}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
