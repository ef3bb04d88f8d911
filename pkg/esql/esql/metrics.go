package esql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks parse outcomes for a long-running process such as the
// watch-mode CLI.
type Metrics struct {
	parses   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration prometheus.Summary
	tokens   prometheus.Histogram
}

// NewMetrics creates the parser metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "parses_total",
			Help:      "Number of queries parsed, by result",
		}, []string{"result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "errors_total",
			Help:      "Number of failed parses, by error class",
		}, []string{"class"}),
		duration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "parse_duration_seconds",
			Help:      "Time taken to parse a query, excluding lexing",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.005,
				0.99: 0.001,
			},
		}),
		tokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "tokens",
			Help:      "Number of tokens in each parsed query",
			Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.parses, m.errors, m.duration, m.tokens)
	}
	return m
}

func (m *Metrics) observe(err error, elapsed time.Duration, tokens int) {
	m.duration.Observe(elapsed.Seconds())
	m.tokens.Observe(float64(tokens))
	if err != nil {
		m.parses.WithLabelValues("error").Inc()
		m.errors.WithLabelValues(errorClass(err)).Inc()
		return
	}
	m.parses.WithLabelValues("ok").Inc()
}
