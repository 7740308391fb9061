package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MatchingMetrics показатели движка сопоставления.
type MatchingMetrics struct {
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	suggestions prometheus.Counter
	scores      prometheus.Histogram
}

// NewMatchingMetrics регистрирует метрики на переданном registerer. nil отключает сбор.
func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	if reg == nil {
		return &MatchingMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_matching_runs_total",
		Help: "Matching runs by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lostfound_matching_duration_seconds",
		Help:    "Duration of a matching run in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	suggestions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_match_suggestions_total",
		Help: "Match rows persisted by the matching engine.",
	})
	scores := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lostfound_match_score",
		Help:    "Scores of persisted matches.",
		Buckets: prometheus.LinearBuckets(0.3, 0.1, 8),
	})
	reg.MustRegister(runs, duration, suggestions, scores)
	return &MatchingMetrics{runs: runs, duration: duration, suggestions: suggestions, scores: scores}
}

// ObserveRun фиксирует итог и длительность прогона.
func (m *MatchingMetrics) ObserveRun(outcome string, took time.Duration) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.duration.Observe(took.Seconds())
}

// ObserveSuggestions учитывает сохранённые совпадения.
func (m *MatchingMetrics) ObserveSuggestions(scores []float64) {
	if m == nil || m.suggestions == nil {
		return
	}
	m.suggestions.Add(float64(len(scores)))
	for _, s := range scores {
		m.scores.Observe(s)
	}
}

// ClaimMetrics переходы статусов заявок.
type ClaimMetrics struct {
	transitions *prometheus.CounterVec
}

func NewClaimMetrics(reg prometheus.Registerer) *ClaimMetrics {
	if reg == nil {
		return &ClaimMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_claim_transitions_total",
		Help: "Claim status transitions.",
	}, []string{"status"})
	reg.MustRegister(transitions)
	return &ClaimMetrics{transitions: transitions}
}

func (m *ClaimMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
