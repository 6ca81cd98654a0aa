// Package metrics exposes the prometheus collectors used across the
// service: request-level HTTP metrics plus counters for the booking
// and scheduling outcomes that matter operationally (sold seats,
// sold-out rejections, overlap rejections).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Purchase outcome label values for PurchasesTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeSoldOut  = "sold_out"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics bundles every collector the service registers.
type Metrics struct {
	// HTTP request totals by method, route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// Purchase attempts by outcome (success, sold_out, rejected,
	// conflict, error).
	PurchasesTotal *prometheus.CounterVec

	// Seats sold across all occurrences.
	SeatsSoldTotal prometheus.Counter

	// Screening create/update attempts rejected by the overlap check.
	OverlapRejectionsTotal prometheus.Counter
}

// New creates the collectors and registers them with the default
// registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the collectors and registers them with the
// given registry.  Tests pass a private registry to avoid duplicate
// registration panics.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		PurchasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_purchases_total",
				Help: "Total number of ticket purchase attempts",
			},
			[]string{"outcome"},
		),
		SeatsSoldTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "seats_sold_total",
				Help: "Total number of seats sold",
			},
		),
		OverlapRejectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "screening_overlap_rejections_total",
				Help: "Screening mutations rejected by the hall overlap check",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PurchasesTotal,
		m.SeatsSoldTotal,
		m.OverlapRejectionsTotal,
	)
	return m
}

// RecordPurchase increments the purchase counter for an outcome.  It
// is nil-safe so the engine can run without metrics wired.
func (m *Metrics) RecordPurchase(outcome string) {
	if m == nil {
		return
	}
	m.PurchasesTotal.WithLabelValues(outcome).Inc()
}

// RecordSeatsSold adds sold seats to the running total.
func (m *Metrics) RecordSeatsSold(n uint32) {
	if m == nil {
		return
	}
	m.SeatsSoldTotal.Add(float64(n))
}

// RecordOverlapRejection counts a scheduler rejection.
func (m *Metrics) RecordOverlapRejection() {
	if m == nil {
		return
	}
	m.OverlapRejectionsTotal.Inc()
}
