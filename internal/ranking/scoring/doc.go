// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package scoring implements the relevance and collaborative signals of
// the ranking engine.
//
// Relevance is a pure function of the query and the item: token overlap
// with the name, category and description, a bonus for ratings above 4.0
// and a bonus for an exact name match.
//
// CollaborativeFilter looks up users with a similar declared income
// through an InteractionSource (the DuckDB interaction store in
// production) and rewards items those users engaged with. Peer sets are
// cached per user in a TTL LRU.
package scoring
