// Package metrics declares the Prometheus collectors for the board server.
// Kept close to the business logic (room, bus, ratelimit) rather than
// behind a facade, so each package wires the specific counters/gauges it
// actually moves.
//
// Naming convention: namespace_subsystem_name.
//   - namespace: board (application-level grouping)
//   - subsystem: room, websocket, redis, ratelimit, circuit_breaker
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebSocketConnections tracks current live sessions across all rooms.
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "board",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket sessions",
	})

	// ActiveRooms tracks the current number of live BoardRooms.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "board",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active board rooms",
	})

	// RoomSessions tracks joined-session count per board.
	RoomSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "board",
		Subsystem: "room",
		Name:      "sessions_count",
		Help:      "Number of joined sessions in each board room",
	}, []string{"board_id"})

	// OpsTotal tracks accepted/rejected ops processed by the reducer.
	OpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "board",
		Subsystem: "room",
		Name:      "ops_total",
		Help:      "Total ops processed by board rooms",
	}, []string{"result"})

	// IdempotentReplaysTotal tracks ops re-served from the idempotency cache.
	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "board",
		Subsystem: "room",
		Name:      "idempotent_replays_total",
		Help:      "Total ops re-served from the idempotency cache instead of re-applied",
	})

	// SnapshotDuration tracks snapshot persist latency.
	SnapshotDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "board",
		Subsystem: "room",
		Name:      "snapshot_persist_seconds",
		Help:      "Time spent persisting a board snapshot",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	// MessageProcessingDuration tracks per-message-type processing latency.
	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "board",
		Subsystem: "websocket",
		Name:      "message_processing_seconds",
		Help:      "Time spent processing an inbound WebSocket message",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"message_type"})

	// WebsocketEvents tracks every inbound/outbound message by type and outcome.
	WebsocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "board",
		Subsystem: "websocket",
		Name:      "events_total",
		Help:      "Total WebSocket messages processed",
	}, []string{"message_type", "status"})

	// CircuitBreakerState tracks the current state of a named circuit breaker.
	// 0: Closed (Healthy), 1: Open (Failure), 2: Half-Open (Recovering).
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "board",
		Subsystem: "circuit_breaker",
		Name:      "state",
		Help:      "Current state of the circuit breaker (0: Closed, 1: Open, 2: Half-Open)",
	}, []string{"service"})

	// CircuitBreakerFailures tracks requests rejected by a circuit breaker.
	CircuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "board",
		Subsystem: "circuit_breaker",
		Name:      "failures_total",
		Help:      "Total requests rejected by the circuit breaker",
	}, []string{"service"})

	// RateLimitExceeded tracks requests rejected by any rate limiter.
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "board",
		Subsystem: "ratelimit",
		Name:      "exceeded_total",
		Help:      "Total number of requests that exceeded a rate limit",
	}, []string{"endpoint", "reason"})

	// RateLimitRequests tracks requests checked against any rate limiter.
	RateLimitRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "board",
		Subsystem: "ratelimit",
		Name:      "requests_total",
		Help:      "Total number of requests checked against a rate limiter",
	}, []string{"endpoint"})

	// RedisOperationsTotal tracks the total number of bus (Redis) operations.
	RedisOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "board",
		Subsystem: "redis",
		Name:      "operations_total",
		Help:      "Total number of Redis bus operations",
	}, []string{"operation", "status"})

	// RedisOperationDuration tracks the duration of bus (Redis) operations.
	RedisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "board",
		Subsystem: "redis",
		Name:      "operation_duration_seconds",
		Help:      "Duration of Redis bus operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// IncConnection records a new session joining any room.
func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

// DecConnection records a session leaving any room.
func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
