// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking Metrics
	RankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_requests_total",
			Help: "Total number of ranking requests",
		},
		[]string{"outcome"}, // "ok", "empty", "degraded", "canceled", "error"
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_request_duration_seconds",
			Help:    "Duration of ranking requests in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .2, .3, .5, 1},
		},
	)

	RankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_candidates",
			Help:    "Number of candidates per ranking request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
		},
	)

	SignalFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_signal_fallbacks_total",
			Help: "Total number of scores that used a signal's default value",
		},
		[]string{"signal", "reason"}, // reason: "timeout", "canceled", "error", "invalid", "absent"
	)

	DiversitySubstitutions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_diversity_substitutions_total",
			Help: "Total number of novelty slots filled from outside the window",
		},
	)

	AlternativesFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_alternatives_found",
			Help:    "Number of alternatives attached per ranked item",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	// Feedback Metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Total number of feedback events processed",
		},
		[]string{"action", "result"}, // result: "applied", "invalid", "error"
	)

	FeedbackRecordErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_record_errors_total",
			Help: "Total number of interactions that could not be recorded",
		},
	)

	// Bandit Store Metrics
	BanditUpdateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bandit_update_duration_seconds",
			Help:    "Duration of bandit state updates in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"backend"},
	)

	BanditUpdateErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_update_errors_total",
			Help: "Total number of failed bandit state updates",
		},
		[]string{"backend"},
	)

	BanditTrackedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bandit_tracked_items",
			Help: "Number of items with persisted bandit state",
		},
	)

	BanditMeanConversion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bandit_mean_conversion_rate",
			Help: "Average posterior mean across tracked items",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS Feedback Transport Metrics
	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRankRequest records a completed ranking request
func RecordRankRequest(outcome string, candidates int, duration time.Duration) {
	RankRequests.WithLabelValues(outcome).Inc()
	RankDuration.Observe(duration.Seconds())
	RankCandidates.Observe(float64(candidates))
}

// RecordSignalFallback records a component score that fell back to its default
func RecordSignalFallback(signal, reason string) {
	SignalFallbacks.WithLabelValues(signal, reason).Inc()
}

// RecordFeedback records the outcome of one feedback event
func RecordFeedback(action, result string) {
	FeedbackEvents.WithLabelValues(action, result).Inc()
}

// RecordBanditUpdate records a bandit state update
func RecordBanditUpdate(backend string, duration time.Duration, err error) {
	BanditUpdateDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		BanditUpdateErrors.WithLabelValues(backend).Inc()
	}
}

// UpdateBanditGauges publishes aggregate bandit statistics
func UpdateBanditGauges(trackedItems int, meanConversion float64) {
	BanditTrackedItems.Set(float64(trackedItems))
	BanditMeanConversion.Set(meanConversion)
}

// RecordCacheAccess records a hit or miss for the named cache
func RecordCacheAccess(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSProcessingDuration records message processing duration
func RecordNATSProcessingDuration(duration time.Duration) {
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records a served API request. route is the matched route
// pattern, not the raw path, to bound label cardinality.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
