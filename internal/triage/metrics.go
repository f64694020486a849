package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the analysis gateway.
type Metrics struct {
	AnalyzesTotal   *prometheus.CounterVec
	AnalyzeDuration *prometheus.HistogramVec
	TokensIn        prometheus.Counter
	TokensOut       prometheus.Counter
}

// NewMetrics registers and returns gateway metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalyzesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_analyzes_total",
			Help: "Total analysis calls by outcome (ok or fallback).",
		}, []string{"outcome"}),
		AnalyzeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_analyze_duration_seconds",
			Help:    "Duration of analysis calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}, []string{"outcome"}),
		TokensIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_llm_tokens_input_total",
			Help: "Total LLM input tokens consumed.",
		}),
		TokensOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_llm_tokens_output_total",
			Help: "Total LLM output tokens consumed.",
		}),
	}

	reg.MustRegister(
		m.AnalyzesTotal,
		m.AnalyzeDuration,
		m.TokensIn,
		m.TokensOut,
	)

	return m
}

// Hooks returns GatewayHooks that increment the corresponding metrics.
func (m *Metrics) Hooks() GatewayHooks {
	return GatewayHooks{
		OnAnalyze: func(outcome string, seconds float64, tokensIn, tokensOut int) {
			m.AnalyzesTotal.WithLabelValues(outcome).Inc()
			m.AnalyzeDuration.WithLabelValues(outcome).Observe(seconds)
			m.TokensIn.Add(float64(tokensIn))
			m.TokensOut.Add(float64(tokensOut))
		},
	}
}
