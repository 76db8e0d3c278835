// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package reranking implements post-processing of the fused ranking.
//
// Reranking is applied after fusion and before the list is cut to the
// result window:
//
//	Fusion -> sort by final score -> Reranker -> window -> alternatives
//
// # Diversity
//
// Diversity splits the window of N items into three zones:
//
//	positions 1..N-3     exploitation, order unchanged
//	positions N-2..N-1   mild exploration, scores perturbed by uniform
//	                     noise of +/- NoiseFraction and re-sorted
//	position N           novelty, taken by the best item at or below N
//	                     whose cluster is absent from positions 1..N-1
//
// When no such item exists position N keeps its occupant. The output is
// always a permutation of the input and depends only on the input and
// the random source, so a seeded *rand.Rand reproduces a ranking exactly.
//
// # Interface
//
// Rerankers implement ranking.Reranker:
//
//	type Reranker interface {
//	    Name() string
//	    Rerank(items []ScoredItem, rng *rand.Rand) []ScoredItem
//	}
package reranking
