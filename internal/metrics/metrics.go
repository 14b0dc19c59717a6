package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion Metrics
var (
	// ReviewsIngestedTotal tracks reviews appended to the store by source
	ReviewsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_ingested_total",
			Help: "Total reviews appended to the store by source",
		},
		[]string{"source"},
	)

	// StoreSize tracks the current number of reviews in the store
	StoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "review_store_size",
			Help: "Current number of reviews in the store",
		},
	)

	// StoreAppendsRejectedTotal tracks appends refused because the store is full
	StoreAppendsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "review_store_appends_rejected_total",
			Help: "Total appends refused because the configured capacity was exceeded",
		},
	)
)

// Classification Metrics
var (
	// ClassificationsTotal tracks classification attempts by result
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "Total classification attempts by result (ok/invalid_input/failed)",
		},
		[]string{"result"},
	)

	// ClassificationDuration tracks classification latency in seconds
	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classification_duration_seconds",
			Help:    "Classification duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// ClassifierBreakerState tracks the classifier circuit breaker state (0=closed, 1=half-open, 2=open)
	ClassifierBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classifier_circuit_breaker_state",
			Help: "Current classifier circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Harvest Metrics
var (
	// HarvestsTotal tracks harvest runs by source and result
	HarvestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvests_total",
			Help: "Total harvest runs by source and result (ok/failed/invalid)",
		},
		[]string{"source", "result"},
	)

	// HarvestItemsSkippedTotal tracks harvested items skipped after failing classification
	HarvestItemsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_items_skipped_total",
			Help: "Total harvested items skipped because classification failed",
		},
		[]string{"source"},
	)

	// HarvestDuration tracks full harvest batch duration in seconds
	HarvestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvest_duration_seconds",
			Help:    "Harvest batch duration in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

// Analytics Metrics
var (
	// AnalyticsComputeDuration tracks aggregate view computation duration
	AnalyticsComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_compute_duration_seconds",
			Help:    "Aggregate view computation duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// AnalyticsCacheHits tracks aggregate view cache hits
	AnalyticsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cache_hits_total",
			Help: "Total aggregate view cache hits",
		},
	)

	// AnalyticsCacheMisses tracks aggregate view cache misses
	AnalyticsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cache_misses_total",
			Help: "Total aggregate view cache misses",
		},
	)
)

// WebSocket Metrics
var (
	// WebSocketClientsCurrent tracks connected analytics websocket clients
	WebSocketClientsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients_current",
			Help: "Current number of connected analytics websocket clients",
		},
	)

	// WebSocketSlowClientsEvicted tracks clients evicted due to a full send buffer
	WebSocketSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_slow_clients_evicted_total",
			Help: "Total slow websocket clients evicted due to buffer full",
		},
	)
)

// Coordination Metrics
var (
	// PubSubMessagesReceived tracks refresh notifications received per channel
	PubSubMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubsub_messages_received_total",
			Help: "Total pub/sub messages received by channel",
		},
		[]string{"channel"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "go_version"},
	)
)
