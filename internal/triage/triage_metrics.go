package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	TriagesTotal   *prometheus.CounterVec
	TriageDuration *prometheus.HistogramVec
	StageDuration  *prometheus.HistogramVec
	Normalizations *prometheus.CounterVec
	SubmitsTotal   *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "counsel_triages_total",
			Help: "Total triage runs by terminal outcome.",
		}, []string{"outcome"}),
		TriageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "counsel_triage_duration_seconds",
			Help:    "Duration of triage runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s .. ~51s
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "counsel_triage_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}, []string{"stage"}),
		Normalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "counsel_normalizations_total",
			Help: "Vocabulary normalization attempts by field and result.",
		}, []string{"field", "result"}),
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "counsel_submits_total",
			Help: "Total triage submissions by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.TriagesTotal,
		m.TriageDuration,
		m.StageDuration,
		m.Normalizations,
		m.SubmitsTotal,
	)

	return m
}

// Hooks returns an EngineHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnStage: func(stage Stage, duration float64) {
			m.StageDuration.WithLabelValues(string(stage)).Observe(duration)
		},
		OnNormalize: func(field string, applied bool) {
			result := "kept_raw"
			if applied {
				result = "normalized"
			}
			m.Normalizations.WithLabelValues(field, result).Inc()
		},
		OnComplete: func(outcome string, duration float64) {
			m.TriagesTotal.WithLabelValues(outcome).Inc()
			m.TriageDuration.WithLabelValues(outcome).Observe(duration)
		},
	}
}
