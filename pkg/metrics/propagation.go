package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PropagationMetrics records account status deliveries to the listings service.
type PropagationMetrics struct {
	attempts  *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	abandoned prometheus.Counter
	queue     prometheus.Gauge
}

// NewPropagationMetrics registers the propagation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPropagationMetrics(reg prometheus.Registerer) *PropagationMetrics {
	if reg == nil {
		return &PropagationMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "status_propagation_attempts_total",
		Help: "HTTP attempts made to deliver owner status changes.",
	}, []string{"result"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "status_propagation_outcomes_total",
		Help: "Final outcome of each owner status change.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "status_propagation_attempt_duration_seconds",
		Help:    "Duration of a single propagation attempt in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	abandoned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "status_propagation_abandoned_total",
		Help: "Status changes dropped after exhausting retries.",
	})
	queue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "status_propagation_queue_depth",
		Help: "Status changes waiting in the dispatcher queue.",
	})
	reg.MustRegister(attempts, outcomes, duration, abandoned, queue)
	return &PropagationMetrics{
		attempts:  attempts,
		outcomes:  outcomes,
		duration:  duration,
		abandoned: abandoned,
		queue:     queue,
	}
}

// ObserveAttempt records one delivery attempt and how long it took.
func (p *PropagationMetrics) ObserveAttempt(success bool, took time.Duration) {
	if p == nil || p.attempts == nil {
		return
	}
	result := "error"
	if success {
		result = "ok"
	}
	p.attempts.WithLabelValues(result).Inc()
	p.duration.WithLabelValues(result).Observe(took.Seconds())
}

// IncOutcome counts the terminal (or queued) result of a status change.
func (p *PropagationMetrics) IncOutcome(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncAbandoned counts an event that ran out of retries.
func (p *PropagationMetrics) IncAbandoned() {
	if p == nil || p.abandoned == nil {
		return
	}
	p.abandoned.Inc()
}

// SetQueueDepth reports the current dispatcher backlog.
func (p *PropagationMetrics) SetQueueDepth(depth int) {
	if p == nil || p.queue == nil {
		return
	}
	p.queue.Set(float64(depth))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
