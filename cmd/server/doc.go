// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package main is the entry point of the adaptrank server.
//
// Adaptrank re-orders candidate sets produced by an upstream retrieval stage.
// Each candidate is scored from four signals (Thompson-sampled engagement,
// collaborative behavior of similar users, query relevance and the upstream
// affordability score), fused, and reranked for diversity before
// same-cluster alternatives are attached. Feedback events update the
// per-item Beta posteriors the bandit samples from.
//
// # Startup Order
//
//  1. Configuration: defaults, config.yaml, environment (koanf)
//  2. Logging: zerolog, bridged to slog for the supervisor
//  3. Bandit store: memory, BadgerDB or Redis
//  4. Signal sources: DuckDB interactions and Qdrant catalog, when enabled
//  5. Ranking engine
//  6. Feedback: ingester, then the NATS JetStream transport when enabled
//  7. Supervisor tree (suture) running the HTTP server, the feedback
//     consumer and the bandit statistics collector
//
// # Example Usage
//
// Development, in-memory state and synchronous feedback:
//
//	LOG_FORMAT=console ./adaptrank
//
// Persistent bandit state with an embedded NATS feedback stream:
//
//	export BANDIT_BACKEND=badger
//	export BANDIT_BADGER_PATH=/data/bandit
//	export NATS_ENABLED=true
//	./adaptrank
//
// Shared state across replicas:
//
//	export BANDIT_BACKEND=redis
//	export REDIS_ADDR=redis:6379
//	export NATS_ENABLED=true NATS_EMBEDDED=false NATS_URL=nats://nats:4222
//	export ENABLE_INTERACTIONS=true DUCKDB_PATH=/data/interactions.duckdb
//	export ENABLE_CATALOG=true QDRANT_ADDR=qdrant:6334
//	./adaptrank
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor drains the HTTP
// server and stops the consumer; stores are closed after the tree returns.
package main
