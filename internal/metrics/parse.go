// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and for parse outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rsanders/scoped-search/internal/ir"
)

// Query outcome label values.
const (
	OutcomeParsed    = "parsed"
	OutcomeAbsent    = "absent"
	OutcomeTruncated = "truncated"
)

var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scoped_search",
			Name:      "queries_total",
			Help:      "Queries parsed, by outcome",
		},
		[]string{"outcome"},
	)

	ConditionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scoped_search",
			Name:      "conditions_total",
			Help:      "Conditions produced, by operator",
		},
		[]string{"operator"},
	)
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(ConditionsTotal)
}

// RecordParse counts one parsed query and its conditions.
func RecordParse(cs ir.Conditions, absent, truncated bool) {
	switch {
	case absent:
		QueriesTotal.WithLabelValues(OutcomeAbsent).Inc()
	case truncated:
		QueriesTotal.WithLabelValues(OutcomeTruncated).Inc()
	default:
		QueriesTotal.WithLabelValues(OutcomeParsed).Inc()
	}
	for _, c := range cs {
		ConditionsTotal.WithLabelValues(string(c.Operator)).Inc()
	}
}
