// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package alternatives finds same-cluster substitutes for ranked items.
//
// Substitutes come from the request's candidate pool first. When a
// CatalogLookup is configured and the pool cannot fill the limit, the
// catalog is asked for more members of the cluster. Catalog failures are
// logged and the pool-only answer is returned: a missing alternative is
// never an error.
package alternatives

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/ranking"
)

// CatalogLookup lists catalog items of one cluster.
type CatalogLookup interface {
	ClusterMembers(ctx context.Context, cluster ranking.ClusterID, limit int) ([]ranking.Item, error)
}

// Finder implements ranking.AlternativeFinder.
type Finder struct {
	catalog CatalogLookup
	logger  zerolog.Logger
}

// NewFinder creates a finder. catalog may be nil.
func NewFinder(catalog CatalogLookup, logger zerolog.Logger) *Finder {
	return &Finder{
		catalog: catalog,
		logger:  logger.With().Str("component", "alternatives").Logger(),
	}
}

// Alternatives returns up to limit IDs of items sharing item's cluster,
// excluding item, ordered by rating descending then price ascending.
// The result is never nil.
func (f *Finder) Alternatives(ctx context.Context, item *ranking.Item, pool []ranking.Item, limit int) []ranking.ItemID {
	if item == nil || limit <= 0 {
		return []ranking.ItemID{}
	}

	seen := map[ranking.ItemID]struct{}{item.ID: {}}
	var matches []*ranking.Item
	collect := func(items []ranking.Item) {
		for i := range items {
			c := &items[i]
			if c.ClusterID != item.ClusterID {
				continue
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			matches = append(matches, c)
		}
	}

	collect(pool)

	if f.catalog != nil && len(matches) < limit {
		// one extra slot for item itself
		members, err := f.catalog.ClusterMembers(ctx, item.ClusterID, limit+1)
		if err != nil {
			f.logger.Debug().
				Err(err).
				Str("request_id", logging.RequestIDFromContext(ctx)).
				Str("item_id", string(item.ID)).
				Int("cluster_id", int(item.ClusterID)).
				Msg("catalog lookup failed, using candidate pool only")
		} else {
			collect(members)
		}
	}

	sortByPreference(matches)

	n := min(limit, len(matches))
	out := make([]ranking.ItemID, n)
	for i := 0; i < n; i++ {
		out[i] = matches[i].ID
	}
	return out
}

// sortByPreference orders by rating descending, then price ascending, then
// ID for a total order.
func sortByPreference(items []*ranking.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.ID < b.ID
	})
}
