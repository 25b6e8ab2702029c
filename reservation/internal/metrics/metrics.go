package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reservation"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	decisions   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	published   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobRuns     *prometheus.CounterVec
}

// New registers the reservation metrics on reg. A nil reg yields a no-op set.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Creation outcomes by assigned status.",
		}, []string{"status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Applied status transitions.",
		}, []string{"from", "to"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Reservation events handed to the broker.",
		}, []string{"result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of background jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by result.",
		}, []string{"job", "result"}),
	}
	reg.MustRegister(m.decisions, m.transitions, m.published, m.jobDuration, m.jobRuns)
	return m
}

func (m *Metrics) Decision(status string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(status).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Published(err error) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Job(job string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(took.Seconds())
	m.jobRuns.WithLabelValues(job, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
