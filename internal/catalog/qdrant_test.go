// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

func TestPointToItem(t *testing.T) {
	tests := []struct {
		name   string
		point  *qdrant.RetrievedPoint
		want   ranking.Item
		wantOK bool
	}{
		{
			name: "full payload",
			point: &qdrant.RetrievedPoint{
				Id: qdrant.NewIDNum(17),
				Payload: map[string]*qdrant.Value{
					"product_id":  qdrant.NewValueString("sku-42"),
					"name":        qdrant.NewValueString("Laptop"),
					"category":    qdrant.NewValueString("computers"),
					"description": qdrant.NewValueString("14 inch"),
					"cluster_id":  qdrant.NewValueInt(3),
					"price":       qdrant.NewValueDouble(999.5),
					"rating":      qdrant.NewValueDouble(4.6),
				},
			},
			want: ranking.Item{
				ID: "sku-42", Name: "Laptop", Category: "computers", Description: "14 inch",
				ClusterID: 3, Price: 999.5, Rating: 4.6,
			},
			wantOK: true,
		},
		{
			name: "integer price and numeric point id",
			point: &qdrant.RetrievedPoint{
				Id: qdrant.NewIDNum(17),
				Payload: map[string]*qdrant.Value{
					"price": qdrant.NewValueInt(25),
				},
			},
			want:   ranking.Item{ID: "17", Price: 25},
			wantOK: true,
		},
		{
			name: "uuid point id",
			point: &qdrant.RetrievedPoint{
				Id:      qdrant.NewIDUUID("5c56c793-69f3-4fbf-87e6-c4bf54c28c26"),
				Payload: map[string]*qdrant.Value{},
			},
			want:   ranking.Item{ID: "5c56c793-69f3-4fbf-87e6-c4bf54c28c26"},
			wantOK: true,
		},
		{
			name:   "no id at all",
			point:  &qdrant.RetrievedPoint{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pointToItem(tt.point)
			if ok != tt.wantOK {
				t.Fatalf("pointToItem() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.ID != tt.want.ID || got.Name != tt.want.Name || got.Category != tt.want.Category ||
				got.Description != tt.want.Description || got.ClusterID != tt.want.ClusterID ||
				got.Price != tt.want.Price || got.Rating != tt.want.Rating {
				t.Errorf("pointToItem() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClusterFilter(t *testing.T) {
	if got := len(clusterFilter(4, false).GetMust()); got != 1 {
		t.Errorf("conditions without stock filter = %d, want 1", got)
	}
	if got := len(clusterFilter(4, true).GetMust()); got != 2 {
		t.Errorf("conditions with stock filter = %d, want 2", got)
	}
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		name string
		v    *qdrant.Value
		want float64
	}{
		{"double", qdrant.NewValueDouble(1.5), 1.5},
		{"integer", qdrant.NewValueInt(7), 7},
		{"string", qdrant.NewValueString("7"), 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := numberValue(tt.v); got != tt.want {
				t.Errorf("numberValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestQdrantCatalog_Live runs against a real Qdrant when QDRANT_ADDR is set.
func TestQdrantCatalog_Live(t *testing.T) {
	addr := os.Getenv("QDRANT_ADDR")
	if addr == "" {
		t.Skip("QDRANT_ADDR not set")
	}
	collection := os.Getenv("QDRANT_COLLECTION")
	if collection == "" {
		collection = "products"
	}

	c, err := NewQdrantCatalog(Config{Addr: addr, Collection: collection}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewQdrantCatalog() error = %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Skipf("collection unavailable: %v", err)
	}
	items, err := c.ClusterMembers(context.Background(), 0, 5)
	if err != nil {
		t.Fatalf("ClusterMembers() error = %v", err)
	}
	if len(items) > 5 {
		t.Errorf("len(ClusterMembers()) = %d, want <= 5", len(items))
	}
}
