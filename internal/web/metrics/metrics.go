// Package metrics provides Prometheus metrics for the namelink API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks API requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "namelink",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"route", "method", "status_code"},
	)

	// HTTPRequestDuration tracks API request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "namelink",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"route"},
	)

	// LookupsTotal tracks word lookups by whether the word was a corpus name
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "namelink",
			Subsystem: "lookup",
			Name:      "total",
			Help:      "Total number of word lookups",
		},
		[]string{"exact"},
	)

	// ResolutionsTotal tracks single-record resolutions by final state
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "namelink",
			Subsystem: "resolve",
			Name:      "total",
			Help:      "Total number of single-record resolutions by final state",
		},
		[]string{"state"},
	)

	// CorpusNames reports the number of distinct names loaded
	CorpusNames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "namelink",
			Subsystem: "corpus",
			Name:      "names",
			Help:      "Number of distinct reference names indexed",
		},
	)
)
