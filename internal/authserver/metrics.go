package authserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Token request outcomes, used as the "outcome" label.
const (
	outcomeIssued          = "issued"
	outcomeInvalidUserID   = "invalid_user_id"
	outcomeSessionMismatch = "session_mismatch"
	outcomeSigningFailed   = "signing_failed"
)

// Metrics holds the auth server's collectors on its own registry, so each
// server exposes only its own series.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
	tokens   *prometheus.CounterVec
}

// NewMetrics registers the auth server collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beams_auth",
			Name:      "requests_total",
			Help:      "Auth server HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "beams_auth",
			Name:      "request_duration_seconds",
			Help:      "Auth server request latency by route.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"route"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "beams_auth",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served.",
		}),
		tokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beams",
			Name:      "token_requests_total",
			Help:      "Beams token requests by outcome.",
		}, []string{"outcome"}),
	}
}

// instrument records route-level request metrics. Requests that match no
// route share the "unmatched" label to keep cardinality bounded.
func (m *Metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// handler serves this registry in the Prometheus exposition format.
func (m *Metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
}

func (m *Metrics) tokenRequest(outcome string) {
	m.tokens.WithLabelValues(outcome).Inc()
}
