package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ToggleTotal counts like and follow toggles by target kind and resulting state.
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_toggle_total",
		Help: "Total number of membership toggles",
	}, []string{"target", "result"})

	// MessagesSent counts direct messages accepted by the server.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_messages_sent_total",
		Help: "Total number of direct messages sent",
	})

	// WebSocketConnectionsTotal is the gauge of active notification sockets.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts events dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// CacheLookups counts cache-aside lookups by outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Cache lookups by result (hit, miss, error)",
	}, []string{"result"})
)

// RecordToggle counts one toggle. removed is the "already present" flag.
func RecordToggle(target string, removed bool) {
	result := "added"
	if removed {
		result = "removed"
	}
	ToggleTotal.WithLabelValues(target, result).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
