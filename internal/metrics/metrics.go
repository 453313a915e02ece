// Prometheus collectors for the telemetry peer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesBroadcast counts telemetry frames sent to all clients.
	FramesBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "urbanpulse_frames_broadcast_total",
			Help: "Total number of telemetry frames broadcast to clients",
		},
	)

	// ConnectedClients tracks currently connected stream clients.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "urbanpulse_connected_clients",
			Help: "Number of currently connected telemetry stream clients",
		},
	)

	// ControlRequests counts control actions by kind and outcome.
	ControlRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "urbanpulse_control_requests_total",
			Help: "Total number of control requests",
		},
		[]string{"action", "status"},
	)
)
