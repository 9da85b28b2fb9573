package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveMessage("handled")
	m.ObserveBooking("confirmed")
	m.ObserveConflictResolved()
	m.ObserveDedupCancel()
	m.ObserveProviderError("auth")
	m.ObserveBookingLatency(0.25)
}

func TestBookingMetricsDefaultRegistry(t *testing.T) {
	m := NewBookingMetrics(nil)
	m.ObserveMessage("ignored")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveMessage("handled")
	m.ObserveBooking("confirmed")
	m.ObserveConflictResolved()
	m.ObserveDedupCancel()
	m.ObserveProviderError("conflict")
	m.ObserveBookingLatency(0.1)
}
