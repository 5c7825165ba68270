package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Connection metrics
	ConnectionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_connections_opened_total",
			Help: "Total WebSocket connections opened",
		},
	)

	ConnectionsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_connections_closed_total",
			Help: "Total WebSocket connections closed",
		},
	)

	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections_active",
			Help: "Currently open WebSocket connections",
		},
	)

	// Business metrics
	MessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_published_total",
			Help: "Total room messages published",
		},
		[]string{"kind"}, // "text", "emoji", or "system"
	)

	PrivateMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_private_messages_total",
			Help: "Total private messages sent",
		},
	)

	TypingEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_typing_events_total",
			Help: "Total typing indicators relayed",
		},
		[]string{"state"}, // "start" or "stop"
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_rooms_created_total",
			Help: "Total rooms created after startup",
		},
	)

	// Gateway metrics
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_dropped_total",
			Help: "Total events dropped by the gateway",
		},
		[]string{"reason"}, // "bad_payload", "unknown_event", "slow_client"
	)
)
