// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package resilience isolates the ranking engine from slow or failing
// collaborators.
//
// Breaker wraps github.com/sony/gobreaker/v2 with the metric and logging
// conventions used across the service. The interaction store (DuckDB) and
// the catalog (Qdrant) are called through a breaker so that an outage turns
// into fast signal fallbacks instead of every request waiting for its
// signal timeout.
//
// Breaker state is exported as circuit_breaker_state{name} (0 closed,
// 1 half-open, 2 open) together with request and transition counters.
package resilience
