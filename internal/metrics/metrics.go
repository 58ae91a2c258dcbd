package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncroom_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncroom_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncroom_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncroom_tool_invocations_total",
			Help: "Total tool invocations by outcome",
		},
		[]string{"tool", "status"}, // status: ok, not_found, invalid_input, handler_failure, unavailable
	)

	ToolInvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncroom_tool_invocation_duration_seconds",
			Help:    "Tool handler execution time",
			Buckets: []float64{.001, .005, .025, .1, .5, 1, 5, 30},
		},
		[]string{"tool"},
	)

	WatchRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syncroom_watch_requests_total",
			Help: "Total long-poll event requests",
		},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncroom_ws_connections",
			Help: "Currently open websocket connections",
		},
	)
)
