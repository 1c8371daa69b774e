package xsd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters a Registry updates while
// ingesting schema documents. A nil *Metrics records nothing.
type Metrics struct {
	// Schema documents by outcome: ingested, skipped or failed.
	Documents *prometheus.CounterVec
	// Declarations registered, by kind.
	Declarations *prometheus.CounterVec
	// Diagnostics reported, by kind.
	Diagnostics *prometheus.CounterVec
}

// NewMetrics creates the ingestion counters and registers them with
// reg. If reg is nil, the counters are not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xsdtypes",
				Name:      "documents_total",
				Help:      "Schema documents processed, by outcome",
			},
			[]string{"outcome"},
		),
		Declarations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xsdtypes",
				Name:      "declarations_total",
				Help:      "Declarations registered, by kind",
			},
			[]string{"kind"},
		),
		Diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xsdtypes",
				Name:      "diagnostics_total",
				Help:      "Problems reported while ingesting schema documents, by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) document(outcome string) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) declaration(kind string) {
	if m == nil {
		return
	}
	m.Declarations.WithLabelValues(kind).Inc()
}

func (m *Metrics) diagnostic(kind DiagnosticKind) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(string(kind)).Inc()
}
