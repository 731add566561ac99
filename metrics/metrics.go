// Package metrics exposes the server's Prometheus collectors.
// Served by promhttp on /metrics in main.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GamesStarted counts game instances created, labelled by mode.
	GamesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleven_games_started_total",
		Help: "Game instances started, by mode (solo, vsai, versus).",
	}, []string{"mode"})

	// MovesResolved counts successful match resolutions and bonus uses.
	MovesResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eleven_moves_resolved_total",
		Help: "Successful match resolutions and bonus uses.",
	})

	// MovesRejected counts recoverable rule violations.
	MovesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eleven_moves_rejected_total",
		Help: "Rejected move attempts (wrong sum, unavailable unit, ...).",
	})

	// RoomsActive tracks rooms currently alive in the registry.
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eleven_rooms_active",
		Help: "Rooms currently held by the session registry.",
	})

	// RelayMessages counts progress/membership messages relayed to peers.
	RelayMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eleven_relay_messages_total",
		Help: "Messages relayed to room members.",
	})
)
