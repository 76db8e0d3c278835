// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package alternatives

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

type fakeCatalog struct {
	members map[ranking.ClusterID][]ranking.Item
	err     error
	calls   int
}

func (c *fakeCatalog) ClusterMembers(_ context.Context, cluster ranking.ClusterID, limit int) ([]ranking.Item, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	m := c.members[cluster]
	if len(m) > limit {
		m = m[:limit]
	}
	return m, nil
}

func item(id string, cluster ranking.ClusterID, rating, price float64) ranking.Item {
	return ranking.Item{ID: ranking.ItemID(id), ClusterID: cluster, Rating: rating, Price: price}
}

func TestFinder_Alternatives(t *testing.T) {
	target := item("target", 1, 4.5, 100)

	tests := []struct {
		name  string
		pool  []ranking.Item
		limit int
		want  []ranking.ItemID
	}{
		{
			name:  "empty pool",
			limit: 3,
			want:  []ranking.ItemID{},
		},
		{
			name:  "excludes self and other clusters",
			pool:  []ranking.Item{target, item("a", 2, 5, 10), item("b", 1, 3, 10)},
			limit: 3,
			want:  []ranking.ItemID{"b"},
		},
		{
			name: "rating descending then price ascending",
			pool: []ranking.Item{
				item("cheap-low", 1, 3.0, 10),
				item("pricey-high", 1, 4.8, 900),
				item("cheap-high", 1, 4.8, 300),
				item("mid", 1, 4.0, 50),
			},
			limit: 3,
			want:  []ranking.ItemID{"cheap-high", "pricey-high", "mid"},
		},
		{
			name: "full ties break on ID",
			pool: []ranking.Item{
				item("z", 1, 4, 10),
				item("a", 1, 4, 10),
			},
			limit: 3,
			want:  []ranking.ItemID{"a", "z"},
		},
		{
			name:  "duplicates in pool counted once",
			pool:  []ranking.Item{item("a", 1, 4, 10), item("a", 1, 4, 10)},
			limit: 3,
			want:  []ranking.ItemID{"a"},
		},
		{
			name:  "zero limit",
			pool:  []ranking.Item{item("a", 1, 4, 10)},
			limit: 0,
			want:  []ranking.ItemID{},
		},
	}

	f := NewFinder(nil, zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Alternatives(context.Background(), &target, tt.pool, tt.limit)
			if got == nil {
				t.Fatal("Alternatives() = nil, want non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Alternatives() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFinder_NilItem(t *testing.T) {
	got := NewFinder(nil, zerolog.Nop()).Alternatives(context.Background(), nil, nil, 3)
	if got == nil || len(got) != 0 {
		t.Errorf("Alternatives(nil) = %v, want empty", got)
	}
}

func TestFinder_CatalogFill(t *testing.T) {
	target := item("target", 7, 4, 100)
	catalog := &fakeCatalog{members: map[ranking.ClusterID][]ranking.Item{
		7: {target, item("cat-best", 7, 5, 200), item("pool-a", 7, 4.2, 80), item("cat-low", 7, 2, 5)},
	}}
	f := NewFinder(catalog, zerolog.Nop())

	pool := []ranking.Item{target, item("pool-a", 7, 4.2, 80)}
	got := f.Alternatives(context.Background(), &target, pool, 3)

	want := []ranking.ItemID{"cat-best", "pool-a", "cat-low"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Alternatives() = %v, want %v", got, want)
	}
	if catalog.calls != 1 {
		t.Errorf("catalog calls = %d, want 1", catalog.calls)
	}
}

func TestFinder_CatalogSkippedWhenPoolSuffices(t *testing.T) {
	target := item("target", 1, 4, 100)
	catalog := &fakeCatalog{}
	f := NewFinder(catalog, zerolog.Nop())

	pool := []ranking.Item{item("a", 1, 4, 1), item("b", 1, 4, 2), item("c", 1, 4, 3), item("d", 1, 4, 4)}
	got := f.Alternatives(context.Background(), &target, pool, 3)

	if len(got) != 3 {
		t.Errorf("len(Alternatives()) = %d, want 3", len(got))
	}
	if catalog.calls != 0 {
		t.Errorf("catalog calls = %d, want 0", catalog.calls)
	}
}

func TestFinder_CatalogFailure(t *testing.T) {
	target := item("target", 1, 4, 100)
	f := NewFinder(&fakeCatalog{err: errors.New("qdrant unavailable")}, zerolog.Nop())

	got := f.Alternatives(context.Background(), &target, []ranking.Item{item("a", 1, 3, 10)}, 3)
	want := []ranking.ItemID{"a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Alternatives() = %v, want %v", got, want)
	}
}
