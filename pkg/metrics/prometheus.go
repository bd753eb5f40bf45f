package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	TasksAttempted prometheus.Counter
	SearchFailures prometheus.Counter
	OffersFound    prometheus.Counter
	DealsDetected  prometheus.Counter
	NotifyFailures prometheus.Counter
	SearchDuration prometheus.Histogram
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates new prometheus metrics on a specific registerer
func NewMetricsWith(namespace string, registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		TasksAttempted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_tasks_attempted_total",
			Help:      "The total number of search tasks attempted",
		}),
		SearchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_tasks_failed_total",
			Help:      "The total number of search tasks that failed",
		}),
		OffersFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_found_total",
			Help:      "The total number of offers normalized from search results",
		}),
		DealsDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_detected_total",
			Help:      "The total number of qualifying deals detected",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "The total number of notifier failures",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time taken by individual flight searches",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
