package workflow

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for workflow runs.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	StepsTotal          *prometheus.CounterVec
	NotifyFailuresTotal prometheus.Counter
	EventsTotal         *prometheus.CounterVec
}

// NewMetrics registers and returns workflow metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_workflow_runs_total",
			Help: "Total workflow runs by outcome (ok, failed, or permanent).",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_workflow_run_duration_seconds",
			Help:    "Duration of workflow runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms .. ~51s
		}, []string{"outcome"}),
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_workflow_steps_total",
			Help: "Total step executions by step name and outcome.",
		}, []string{"step", "outcome"}),
		NotifyFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_workflow_notify_failures_total",
			Help: "Total assignment notifications that failed to send.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_workflow_events_total",
			Help: "Total trigger events by outcome (accepted or rejected).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.StepsTotal,
		m.NotifyFailuresTotal,
		m.EventsTotal,
	)

	return m
}

// EngineHooks returns hooks that increment the run and step metrics.
func (m *Metrics) EngineHooks() EngineHooks {
	return EngineHooks{
		OnRun: func(outcome string, seconds float64) {
			m.RunsTotal.WithLabelValues(outcome).Inc()
			m.RunDuration.WithLabelValues(outcome).Observe(seconds)
		},
		OnStep: func(step, outcome string) {
			m.StepsTotal.WithLabelValues(step, outcome).Inc()
		},
		OnNotifyFailure: func() {
			m.NotifyFailuresTotal.Inc()
		},
	}
}

// ServiceHooks returns hooks that increment the event intake metrics.
func (m *Metrics) ServiceHooks() ServiceHooks {
	return ServiceHooks{
		OnEvent: func(outcome string) {
			m.EventsTotal.WithLabelValues(outcome).Inc()
		},
	}
}
