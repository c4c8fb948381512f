package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capstonehub/capstone-hub/internal/ratelimit"
)

// Metrics holds the HTTP collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	denials         *prometheus.CounterVec
	logins          *prometheus.CounterVec
	backups         *prometheus.CounterVec
	sessionsExpired prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capstone_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capstone_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capstone_guard_denials_total",
			Help: "Requests refused by a guard, by reason.",
		}, []string{"reason"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capstone_login_attempts_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capstone_backups_total",
			Help: "Backup runs by result.",
		}, []string{"result"}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capstone_sessions_expired_total",
			Help: "Sessions cleared by the idle timeout.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.denials,
		m.logins,
		m.backups,
		m.sessionsExpired,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// watchLoginLimiter exports the login limiter's tracked keys and counted
// attempts as gauges read at scrape time.
func (m *Metrics) watchLoginLimiter(src ratelimit.StatsReporter) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "capstone_login_limiter_keys",
			Help: "Client addresses with login attempts inside the window.",
		}, func() float64 { return float64(src.Stats().TotalKeys) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "capstone_login_limiter_attempts",
			Help: "Login attempts counted inside the window.",
		}, func() float64 { return float64(src.Stats().TotalRequests) }),
	)
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) denied(reason string) {
	m.denials.WithLabelValues(reason).Inc()
}

func (m *Metrics) login(result string) {
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) backup(result string) {
	m.backups.WithLabelValues(result).Inc()
}

func (m *Metrics) sessionExpired() {
	m.sessionsExpired.Inc()
}
