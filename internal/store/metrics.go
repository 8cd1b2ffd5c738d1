package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsNamespace = "ifaceload"

// Metrics holds Prometheus metrics for a load run.
type Metrics struct {
	RecordsReceived prometheus.Counter
	RowsInserted    prometheus.Counter
	RowsLinked      prometheus.Counter
	Outcomes        *prometheus.CounterVec
	LoadErrors      prometheus.Counter
	LoadDuration    prometheus.Histogram
}

// NewMetrics creates loader metrics registered with the given registerer.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "records_received_total",
			Help:      "Total number of extracted interface records handed to the loader",
		}),
		RowsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "rows_inserted_total",
			Help:      "Total number of interface rows inserted",
		}),
		RowsLinked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "rows_linked_total",
			Help:      "Total number of interface rows linked to a port-channel",
		}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "load_outcomes_total",
			Help:      "Total number of loads by transaction outcome",
		}, []string{"outcome"}),
		LoadErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "load_errors_total",
			Help:      "Total number of loads that failed before a commit decision",
		}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent in a load transaction",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
