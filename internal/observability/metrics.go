package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "condo_http_requests_total",
			Help: "Total number of HTTP requests processed by the portal.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "condo_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	pushSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "condo_push_sends_total",
			Help: "Per-device push delivery attempts by outcome.",
		},
		[]string{"result"},
	)
	messagesPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "condo_messages_purged_total",
			Help: "Total number of expired messages removed by the purge.",
		},
	)
	unreadResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "condo_unread_resets_total",
			Help: "Total number of unread-counter resets triggered by list views.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "condo_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		pushSendsTotal,
		messagesPurgedTotal,
		unreadResetsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncPushSend(result string) {
	pushSendsTotal.WithLabelValues(result).Inc()
}

func AddPurgedMessages(count int) {
	messagesPurgedTotal.Add(float64(count))
}

func IncUnreadReset() {
	unreadResetsTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
