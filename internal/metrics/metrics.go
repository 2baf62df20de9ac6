package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	BookingsSubmitted  *prometheus.CounterVec
	TokenCollisions    prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	CalendarEvents     *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BookingsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opd_bookings_submitted_total",
			Help: "Bookings accepted by intake, by specialization.",
		}, []string{"specialization"}),
		TokenCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opd_token_collisions_total",
			Help: "Token candidates rejected because the scope already held them.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opd_status_transitions_total",
			Help: "Booking status changes, by target status.",
		}, []string{"status"}),
		CalendarEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opd_calendar_events_total",
			Help: "Doctor calendar mutations, by action and type.",
		}, []string{"action", "type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opd_http_requests_total",
			Help: "HTTP requests served by the REST API.",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opd_http_request_duration_seconds",
			Help:    "REST API latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.Registry.MustRegister(
		m.BookingsSubmitted,
		m.TokenCollisions,
		m.StatusTransitions,
		m.CalendarEvents,
		m.HTTPRequests,
		m.HTTPRequestLatency,
	)
	return m
}

// GinMiddleware records request counts and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
