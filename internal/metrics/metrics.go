package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "study_room",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route.",
		},
		[]string{"route"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "study_room",
			Name:      "reservations_total",
			Help:      "Reservation operations by outcome (created, updated, cancelled, conflict, rejected).",
		},
		[]string{"outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "study_room",
			Name:      "webhook_notifications_total",
			Help:      "Webhook notification attempts by result (ok, error, skipped).",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservations, notifications)
	})
}

// IncHTTP increments the request counter for a route label.
func IncHTTP(route string) { httpRequests.WithLabelValues(route).Inc() }

// IncReservation increments the reservation counter for an outcome.
func IncReservation(outcome string) { reservations.WithLabelValues(outcome).Inc() }

// IncNotification increments the notification counter for a result.
func IncNotification(result string) { notifications.WithLabelValues(result).Inc() }
