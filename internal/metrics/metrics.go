package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maganghub_api_requests_total",
			Help: "Total number of requests made to the MagangHub API",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "maganghub_api_request_duration_seconds",
			Help: "Duration of MagangHub API requests in seconds",
		},
		[]string{"endpoint"},
	)

	BatchesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "maganghub_batches_fetched_total",
			Help: "Total number of page batches fetched",
		},
	)

	Loads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maganghub_loads_total",
			Help: "Total number of load operations by kind and result",
		},
		[]string{"kind", "result"},
	)

	AggregatedRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maganghub_aggregated_records",
			Help:    "Number of records folded into one statistics result",
			Buckets: prometheus.ExponentialBuckets(20, 2, 8),
		},
	)
)
