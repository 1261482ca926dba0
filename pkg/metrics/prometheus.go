package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsTotal     *prometheus.CounterVec
	deliveriesTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	passDuration    prometheus.Histogram
	regimeState     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_events_total",
				Help: "Total number of alert events produced per category",
			},
			[]string{"category"},
		),
		deliveriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_deliveries_total",
				Help: "Delivery attempts by outcome (sent, filtered, quiet, failed, duplicate)",
			},
			[]string{"outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		passDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sectorpulse_pass_duration_seconds",
				Help:    "Duration of one evaluation pass in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		regimeState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sectorpulse_regime_state",
				Help: "Current market regime (1 for the active state, 0 otherwise)",
			},
			[]string{"state"},
		),
	}
}

// RecordEvent records an alert event produced by an evaluator.
func (r *Recorder) RecordEvent(category string) {
	r.eventsTotal.WithLabelValues(category).Inc()
}

// RecordDelivery records a delivery attempt outcome.
func (r *Recorder) RecordDelivery(outcome string) {
	r.deliveriesTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPassDuration records one evaluation pass duration in seconds.
func (r *Recorder) RecordPassDuration(seconds float64) {
	r.passDuration.Observe(seconds)
}

// RecordRegime flips the regime gauge to the given state.
func (r *Recorder) RecordRegime(state string) {
	for _, s := range []string{"bull", "bear", "neutral"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		r.regimeState.WithLabelValues(s).Set(v)
	}
}
