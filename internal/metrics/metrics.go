// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym",
		Name:      "booking_decisions_total",
		Help:      "Booking proposals by request path (create or update) and outcome.",
	}, []string{"path", "outcome"})

	provisionOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym",
		Name:      "identity_provisioning_total",
		Help:      "Login/profile provisioning attempts by role, operation and result.",
	}, []string{"role", "op", "result"})

	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Booking events handed to the broker, by result.",
	}, []string{"result"})

	eventsConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym",
		Subsystem: "events",
		Name:      "consumed_total",
		Help:      "Booking events read from the queue, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(bookingDecisions, provisionOutcomes, eventsPublished, eventsConsumed)
}

// RecordBookingDecision counts one booking outcome for path ("create" or "update").
func RecordBookingDecision(path, outcome string) {
	bookingDecisions.WithLabelValues(path, outcome).Inc()
}

// RecordProvisioning counts one create/update/delete of a role identity.
func RecordProvisioning(role, op, result string) {
	provisionOutcomes.WithLabelValues(role, op, result).Inc()
}

// RecordEventPublished counts a publish attempt; ok=false means the broker
// call failed.
func RecordEventPublished(ok bool) {
	eventsPublished.WithLabelValues(result(ok)).Inc()
}

// RecordEventConsumed counts a delivery handled by the booking consumer.
func RecordEventConsumed(ok bool) {
	eventsConsumed.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
