// Package metrics exposes prometheus instruments for duplicate checks and
// bookings. All recording methods are no-ops on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	DedupOutcome    *prometheus.CounterVec
	DedupCandidates prometheus.Histogram
	DedupLatency    prometheus.Histogram
	BookingOutcome  *prometheus.CounterVec
	WaitlistAdded   *prometheus.CounterVec
}

// New registers every instrument on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DedupOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saude_dedup_outcomes_total",
			Help: "Duplicate checks by verdict (UNIQUE, DUPLICATE, SKIPPED, ERROR)",
		}, []string{"verdict"}),

		DedupCandidates: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "saude_dedup_candidates",
			Help:    "Number of candidate records found per duplicate check",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		DedupLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "saude_dedup_duration_seconds",
			Help:    "Duration of a full duplicate check including candidate lookup",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),

		BookingOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saude_booking_outcomes_total",
			Help: "Appointment booking attempts by outcome",
		}, []string{"outcome"}),

		WaitlistAdded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "saude_waitlist_entries_total",
			Help: "Waitlist entries created by specialty",
		}, []string{"specialty"}),
	}
}

func (m *Metrics) ObserveDedup(verdict string, candidates int, d time.Duration) {
	if m == nil {
		return
	}
	m.DedupOutcome.WithLabelValues(verdict).Inc()
	m.DedupCandidates.Observe(float64(candidates))
	m.DedupLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementBooking(outcome string) {
	if m != nil {
		m.BookingOutcome.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementWaitlist(specialty string) {
	if m != nil {
		m.WaitlistAdded.WithLabelValues(specialty).Inc()
	}
}

// Handler serves the registry's metrics in the prometheus text format.
func Handler(g prometheus.Gatherer) echo.HandlerFunc {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}
