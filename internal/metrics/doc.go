// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
are exposed by the ops server at /metrics.

# Available Metrics

Ranking Metrics:
  - ranking_requests_total: Ranking requests (counter)
    Labels: outcome
  - ranking_request_duration_seconds: End-to-end latency (histogram)
  - ranking_candidates: Candidates per request (histogram)
  - ranking_signal_fallbacks_total: Scores that used a default (counter)
    Labels: signal, reason
  - ranking_diversity_substitutions_total: Novelty slot fills (counter)
  - ranking_alternatives_found: Alternatives per item (histogram)

Feedback Metrics:
  - feedback_events_total: Processed events (counter)
    Labels: action, result
  - feedback_record_errors_total: Interaction log failures (counter)

Bandit Metrics:
  - bandit_update_duration_seconds: Update latency (histogram)
    Labels: backend
  - bandit_update_errors_total: Failed updates (counter)
    Labels: backend
  - bandit_tracked_items: Items with state (gauge)
  - bandit_mean_conversion_rate: Average posterior mean (gauge)

Infrastructure Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total
    Labels: cache
  - duckdb_query_duration_seconds, duckdb_query_errors_total
    Labels: operation
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_consecutive_failures,
    circuit_breaker_state_transitions_total
  - nats_messages_consumed_total, nats_messages_parse_failed_total,
    nats_processing_duration_seconds

# Usage Example

	start := time.Now()
	result, err := engine.Rank(ctx, req)
	metrics.RecordRankRequest("ok", len(req.Candidates), time.Since(start))

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
