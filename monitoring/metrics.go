package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Bookings committed per event",
		},
		[]string{"event_id"},
	)

	bookingsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Bookings cancelled per event",
		},
		[]string{"event_id"},
	)

	inventoryConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_conflicts_total",
			Help: "Reservations rejected for insufficient inventory",
		},
		[]string{"event_id"},
	)

	releaseRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_release_retries_total",
			Help: "Ledger releases that needed the durable retry queue",
		},
	)

	invariantClamps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_invariant_clamps_total",
			Help: "Ledger releases that had to clamp counters into range",
		},
	)

	batchCommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_batch_commit_seconds",
			Help:    "Duration of booking batch orchestration",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)
)

func RecordBookingsCreated(eventID int64, n int) {
	bookingsCreated.WithLabelValues(strconv.FormatInt(eventID, 10)).Add(float64(n))
}

func RecordBookingCancelled(eventID int64) {
	bookingsCancelled.WithLabelValues(strconv.FormatInt(eventID, 10)).Inc()
}

func RecordInventoryConflict(eventID int64) {
	inventoryConflicts.WithLabelValues(strconv.FormatInt(eventID, 10)).Inc()
}

func RecordReleaseRetryQueued() {
	releaseRetries.Inc()
}

func RecordInvariantClamp() {
	invariantClamps.Inc()
}

func ObserveBatchCommit(seconds float64) {
	batchCommitDuration.Observe(seconds)
}
