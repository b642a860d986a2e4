package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle transitions by target status.",
		},
		[]string{"status"},
	)

	paymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "payments_recorded_total",
			Help:      "Payments recorded by outcome.",
		},
		[]string{"status"},
	)

	refundsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "refunds_recorded_total",
			Help:      "Refunds recorded.",
		},
	)

	webhookDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "gateway_webhook_duplicates_total",
			Help:      "Gateway webhook events recognized as replays.",
		},
	)

	assignmentConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "room_assignment_conflicts_total",
			Help:      "Room assignments that lost a serialization race.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingTransitions,
			paymentsRecorded,
			refundsRecorded,
			webhookDuplicates,
			assignmentConflicts,
		)
	})
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncPaymentRecorded(status string) {
	paymentsRecorded.WithLabelValues(status).Inc()
}

func IncRefundRecorded() {
	refundsRecorded.Inc()
}

func IncWebhookDuplicate() {
	webhookDuplicates.Inc()
}

func IncAssignmentConflict() {
	assignmentConflicts.Inc()
}
