package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_sdk_requests_total",
		Help: "The total number of API requests issued",
	}, []string{"method", "path", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polymarket_sdk_request_duration_seconds",
		Help:    "API request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	RateLimitWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polymarket_sdk_rate_limit_wait_seconds",
		Help:    "Time spent waiting for rate limit admission",
		Buckets: prometheus.DefBuckets,
	}, []string{"key"})

	HeartbeatFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_sdk_heartbeat_failures_total",
		Help: "Total failed heartbeat posts",
	})

	StreamReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_sdk_stream_reconnects_total",
		Help: "Total websocket reconnect attempts",
	}, []string{"channel"})
)
