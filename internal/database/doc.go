// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package database stores user profiles and the interaction log in DuckDB.
//
// # Overview
//
// The ranking engine's collaborative signal needs two queries: the users
// whose declared income is close to the requesting user's, and what those
// users did with a given item. InteractionStore answers both and is also
// the recorder the feedback ingester appends accepted events to.
//
// # Files
//
//   - database.go: lifecycle (open, initialize, checkpoint on close)
//   - database_schema.go: tables and indexes
//   - database_connection.go: pool configuration and conflict retries
//   - database_utils.go: profiling, context defaults, record counts
//   - interactions.go: InteractionStore
//
// # Database Technology
//
// DuckDB is embedded through the CGO driver github.com/duckdb/duckdb-go/v2.
// Tests run against ":memory:" databases.
//
// # Resilience
//
// SimilarUsers and Interactions run behind circuit breakers named
// duckdb-similar-users and duckdb-interactions. Writes retry DuckDB
// transaction conflicts a few times before failing.
//
// # Metrics
//
// Every query records db_query_duration_seconds{operation} and, on failure,
// db_query_errors_total{operation}.
package database
