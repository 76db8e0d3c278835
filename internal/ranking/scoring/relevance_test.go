// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package scoring

import (
	"math"
	"testing"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

func newTestRelevance(t *testing.T) *Relevance {
	t.Helper()
	r, err := NewRelevance(DefaultRelevanceWeights())
	if err != nil {
		t.Fatalf("NewRelevance() error = %v", err)
	}
	return r
}

func TestRelevanceWeights_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*RelevanceWeights)
		wantError bool
	}{
		{"defaults", func(w *RelevanceWeights) {}, false},
		{"fields exactly 60", func(w *RelevanceWeights) { w.Name, w.Category, w.Description = 20, 20, 20 }, false},
		{"fields above 60", func(w *RelevanceWeights) { w.Name = 31 }, true},
		{"negative category", func(w *RelevanceWeights) { w.Category = -1 }, true},
		{"negative rating bonus", func(w *RelevanceWeights) { w.RatingMax = -5 }, true},
		{"all zero", func(w *RelevanceWeights) { *w = RelevanceWeights{} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultRelevanceWeights()
			tt.modify(&w)
			_, err := NewRelevance(w)
			if (err != nil) != tt.wantError {
				t.Errorf("NewRelevance() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestRelevance_Score(t *testing.T) {
	r := newTestRelevance(t)

	tests := []struct {
		name  string
		query string
		item  ranking.Item
		want  float64
	}{
		{
			name:  "no overlap low rating",
			query: "gaming laptop",
			item:  ranking.Item{Name: "Coffee Maker", Category: "kitchen", Rating: 3.5},
			want:  0,
		},
		{
			name:  "name overlap only",
			query: "gaming laptop",
			item:  ranking.Item{Name: "Laptop Pro 14", Category: "computers", Rating: 3.9},
			want:  30,
		},
		{
			name:  "all fields overlap",
			query: "laptop",
			item:  ranking.Item{Name: "Laptop Pro", Category: "Laptop", Description: "A light laptop.", Rating: 0},
			want:  60,
		},
		{
			name:  "category and description",
			query: "Audio",
			item:  ranking.Item{Name: "Headphones", Category: "audio", Description: "Hi-fi audio"},
			want:  30,
		},
		{
			name:  "rating 4.0 earns nothing",
			query: "",
			item:  ranking.Item{Name: "X", Rating: 4.0},
			want:  0,
		},
		{
			name:  "rating 4.5 earns half",
			query: "",
			item:  ranking.Item{Name: "X", Rating: 4.5},
			want:  12.5,
		},
		{
			name:  "rating 5.0 earns full bonus",
			query: "",
			item:  ranking.Item{Name: "X", Rating: 5.0},
			want:  25,
		},
		{
			name:  "rating above 5 is capped",
			query: "",
			item:  ranking.Item{Name: "X", Rating: 7},
			want:  25,
		},
		{
			name:  "exact name match ignores case and spaces",
			query: "  ThinkPad X1 ",
			item:  ranking.Item{Name: "thinkpad x1"},
			want:  45,
		},
		{
			name:  "punctuation splits tokens",
			query: "usb-c charger",
			item:  ranking.Item{Name: "Charger, 65W", Description: "USB/C power"},
			want:  45,
		},
		{
			name:  "everything matches and total is capped",
			query: "phone",
			item:  ranking.Item{Name: "Phone", Category: "phone", Description: "phone", Rating: 5},
			want:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Score(tt.query, &tt.item)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRelevance_ScoreNaNRating(t *testing.T) {
	r := newTestRelevance(t)
	item := ranking.Item{Name: "X", Rating: math.NaN()}
	if got := r.Score("x", &item); got != 45 {
		t.Errorf("Score() = %v, want %v", got, 45.0)
	}
}

func TestRelevance_ScoreNilItem(t *testing.T) {
	r := newTestRelevance(t)
	if got := r.Score("anything", nil); got != ranking.DefaultRelevanceScore {
		t.Errorf("Score(nil) = %v, want %v", got, ranking.DefaultRelevanceScore)
	}
}

func TestRelevance_ScoreIsPure(t *testing.T) {
	r := newTestRelevance(t)
	item := ranking.Item{Name: "Wireless Mouse", Category: "accessories", Description: "Ergonomic wireless mouse", Rating: 4.7}

	first := r.Score("wireless mouse", &item)
	for i := 0; i < 100; i++ {
		if got := r.Score("wireless mouse", &item); got != first {
			t.Fatalf("Score() call %d = %v, want %v", i, got, first)
		}
	}
	if first < 0 || first > ranking.MaxScore {
		t.Errorf("Score() = %v, want within [0, %v]", first, ranking.MaxScore)
	}
}
