// Package metrics holds the Prometheus collectors for seat inventory activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsTotal counts reservation attempts by outcome (accepted, taken, invalid, error)
	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_reservations_total",
			Help: "Seat reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ReleasesTotal counts seat releases
	ReleasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boxoffice_releases_total",
			Help: "Seat reservations released by their holder",
		},
	)

	// HandOffsTotal counts selections handed to checkout by outcome
	HandOffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_handoffs_total",
			Help: "Selections handed off to checkout",
		},
		[]string{"outcome"},
	)

	// InventoryLoadsTotal counts storefront inventory loads by mode (live, demo)
	InventoryLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_inventory_loads_total",
			Help: "Inventory loads resolved live or synthesized",
		},
		[]string{"mode"},
	)

	// InventoryLoadDuration tracks live inventory request latency
	InventoryLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boxoffice_inventory_load_duration_seconds",
			Help:    "Duration of inventory loads",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// RealtimeClients is the number of connected real-time clients
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "boxoffice_realtime_clients",
			Help: "Connected real-time clients",
		},
	)

	// SeatMapsSaved counts seat maps persisted from the back office
	SeatMapsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boxoffice_seat_maps_saved_total",
			Help: "Seat maps saved",
		},
	)
)

func RecordReservation(outcome string) {
	ReservationsTotal.WithLabelValues(outcome).Inc()
}

func RecordHandOff(outcome string) {
	HandOffsTotal.WithLabelValues(outcome).Inc()
}

func RecordInventoryLoad(mode string, took time.Duration) {
	InventoryLoadsTotal.WithLabelValues(mode).Inc()
	InventoryLoadDuration.Observe(took.Seconds())
}
