package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the intake and booking flows.
type BookingMetrics struct {
	messagesTotal     *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	conflictsResolved prometheus.Counter
	dedupCancels      prometheus.Counter
	providerErrors    *prometheus.CounterVec
	bookingLatency    prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "intake",
			Name:      "messages_total",
			Help:      "Inbound messages by handling outcome",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
		conflictsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "conflicts_resolved_total",
			Help:      "Bookings placed on an alternate slot after a conflict",
		}),
		dedupCancels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "dedup_cancellations_total",
			Help:      "Older appointments cancelled by the duplicate window",
		}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "scheduler",
			Name:      "provider_errors_total",
			Help:      "Scheduler provider failures by error class",
		}, []string{"class"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agenda",
			Subsystem: "booking",
			Name:      "attempt_latency_seconds",
			Help:      "Latency of full booking attempts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.messagesTotal, m.bookingsTotal, m.conflictsResolved,
		m.dedupCancels, m.providerErrors, m.bookingLatency,
	)
	return m
}

func (m *BookingMetrics) ObserveMessage(outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveConflictResolved() {
	if m == nil {
		return
	}
	m.conflictsResolved.Inc()
}

func (m *BookingMetrics) ObserveDedupCancel() {
	if m == nil {
		return
	}
	m.dedupCancels.Inc()
}

func (m *BookingMetrics) ObserveProviderError(class string) {
	if m == nil {
		return
	}
	m.providerErrors.WithLabelValues(class).Inc()
}

func (m *BookingMetrics) ObserveBookingLatency(seconds float64) {
	if m == nil {
		return
	}
	m.bookingLatency.Observe(seconds)
}
