// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

/*
Package cache provides a thread-safe generic LRU cache with TTL support.

The collaborative filter uses it to reuse a user's peer set between
ranking requests, and the feedback router remembers handled event IDs in
another.

# Usage

	peers := cache.NewLRU[ranking.UserID, []ranking.UserID]("similar_users", 10000, time.Minute)
	peers.Add(user.ID, ids)
	if ids, ok := peers.Get(user.ID); ok {
	    // reuse
	}

# Expiration

Entries expire lazily on Get. CleanupExpired removes all expired entries
at once and can be called from a maintenance loop.

# Metrics

Hits, misses and evictions are exported as cache_hits_total,
cache_misses_total and cache_evictions_total labelled with the cache name.
*/
package cache
