package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest metrics
var (
	// FramesReceived counts inbound ingest frames before any validation.
	FramesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_frames_received_total",
			Help: "Total ingest frames received",
		},
	)

	// FramesDropped counts frames discarded by reason (decode/shape).
	FramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_frames_dropped_total",
			Help: "Ingest frames dropped by reason",
		},
		[]string{"reason"},
	)

	// FrameDuration tracks how long one frame takes end to end (decode,
	// apply, broadcast).
	FrameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_frame_duration_seconds",
			Help:    "Ingest frame processing duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Engine metrics
var (
	// MatchesTracked is the number of matches currently in the store.
	MatchesTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_matches_tracked",
			Help: "Number of matches currently tracked",
		},
	)

	// EventsEmitted counts derived events by type.
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_events_emitted_total",
			Help: "Derived events emitted by type",
		},
		[]string{"type"},
	)
)

// Hub metrics
var (
	// ConnectedClients is the number of frontend subscribers.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients",
			Help: "Number of connected frontend clients",
		},
	)

	// SlowClientsEvicted counts clients dropped because their send buffer
	// stayed full during a broadcast.
	SlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "Frontend clients evicted due to a full send buffer",
		},
	)

	// BroadcastDuration tracks one full fanout pass.
	BroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_broadcast_duration_seconds",
			Help:    "Broadcast fanout duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	// ConnectionsRejected counts frontend connections refused by the limiter.
	ConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_connections_rejected_total",
			Help: "Frontend connections rejected by reason",
		},
		[]string{"reason"},
	)
)
