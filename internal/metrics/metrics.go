// Package metrics exposes Prometheus collectors shared by the catalog client,
// the generation client and the build pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogRequests counts catalog page requests by outcome ("ok", "http_error", "transport_error", "decode_error").
	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legobuilder_catalog_requests_total",
		Help: "Catalog page requests by outcome",
	}, []string{"outcome"})

	// CatalogParts observes the total part count of each loaded set.
	CatalogParts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "legobuilder_inventory_total_parts",
		Help:    "Total parts per aggregated inventory",
		Buckets: prometheus.ExponentialBuckets(25, 2, 10), // 25 to ~12800
	})

	// GenerationRequests counts generation calls by kind ("build", "guidance") and outcome.
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legobuilder_generation_requests_total",
		Help: "Generation service calls by kind and outcome",
	}, []string{"kind", "outcome"})

	// GenerationDuration observes generation latency by kind.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "legobuilder_generation_duration_seconds",
		Help:    "Generation service latency",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~64s
	}, []string{"kind"})

	// Builds counts completed build runs by size and outcome.
	Builds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legobuilder_builds_total",
		Help: "Build runs by size and outcome",
	}, []string{"size", "outcome"})
)
