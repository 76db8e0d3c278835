// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package ranking turns a bounded set of candidate catalog items into a
// diverse, top-K ranked list and defines the contracts its scorers, stores
// and rerankers implement.
//
// # Architecture
//
// A ranking request flows through four stages:
//
//  1. Fusion: every candidate receives a bandit sample (Thompson sampling over
//     per-item Beta state), a collaborative score, a relevance score and the
//     externally supplied affordability score, combined by fixed weights.
//  2. Ordering: candidates are sorted by fused score, descending.
//  3. Diversity: a Reranker reorders the tail of the top-N window to trade a
//     little exploitation for exploration and cluster novelty.
//  4. Alternatives: each item in the window is annotated with same-cluster
//     substitutes.
//
// Feedback ingestion runs independently (see package feedback) and mutates
// bandit state that ranking only reads.
//
// # Degradation
//
// Fallible scorers return a SignalResult instead of swallowing errors. The
// fusion step collapses an unavailable signal into its documented default
// (bandit 50, collaborative 0, relevance 0, affordability 50) and records the
// fallback on the ScoredItem. A single item can never fail the batch.
//
// # Determinism
//
// Each request draws one seed from the engine's generator. Item i samples
// from PCG(seed, i) and the diversity pass from PCG(seed, ^0), so a fixed
// Config.Bandit.Seed yields identical output regardless of how scoring
// goroutines are scheduled.
//
// # Usage
//
//	cfg := ranking.DefaultConfig()
//	engine, err := ranking.NewEngine(cfg, ranking.Dependencies{
//	    Bandit:        store,
//	    Relevance:     scoring.NewRelevance(scoring.DefaultRelevanceWeights()),
//	    Collaborative: cf,
//	    Reranker:      reranking.NewDiversity(cfg.Diversity),
//	    Alternatives:  alternatives.NewFinder(nil, logger),
//	}, logger)
//
//	result, err := engine.Rank(ctx, ranking.Request{
//	    Query:      "gaming laptop",
//	    User:       profile,
//	    Candidates: items,
//	})
package ranking
