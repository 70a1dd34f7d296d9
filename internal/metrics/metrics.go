package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leave_notifications_total",
			Help: "Leave notification attempts by strategy, channel, content tier and outcome.",
		},
		[]string{"strategy", "channel", "tier", "outcome"},
	)

	remindersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leave_reminders_sent_total",
		Help: "Upcoming-leave reminders dispatched by the scheduler.",
	})

	outboxPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leave_outbox_events_total",
			Help: "Outbox events relayed to Kafka by outcome.",
		},
		[]string{"outcome"},
	)

	once sync.Once
)

// Init registers every collector with the default registry. Safe to call more
// than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			notificationsTotal,
			remindersTotal,
			outboxPublishedTotal,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records RPS, latency and in-flight requests. Paths are the gin
// route template so ids do not explode label cardinality.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	}
}

func ObserveNotification(strategy, channel, tier, outcome string) {
	notificationsTotal.WithLabelValues(strategy, channel, tier, outcome).Inc()
}

func ObserveReminders(n int) {
	remindersTotal.Add(float64(n))
}

func ObserveOutbox(outcome string) {
	outboxPublishedTotal.WithLabelValues(outcome).Inc()
}
