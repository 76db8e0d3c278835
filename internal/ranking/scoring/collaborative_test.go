// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

// fakeSource is an in-memory InteractionSource.
type fakeSource struct {
	mu           sync.Mutex
	users        []ranking.UserID
	interactions []ranking.Interaction
	usersErr     error
	itemsErr     error
	similarCalls int
	lastLimit    int
}

func (s *fakeSource) SimilarUsers(_ context.Context, _ ranking.UserProfile, _ float64, limit int) ([]ranking.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.similarCalls++
	s.lastLimit = limit
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	if len(s.users) > limit {
		return s.users[:limit], nil
	}
	return s.users, nil
}

func (s *fakeSource) Interactions(_ context.Context, item ranking.ItemID, users []ranking.UserID) ([]ranking.Interaction, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	var out []ranking.Interaction
	for _, in := range s.interactions {
		if in.ItemID == item {
			out = append(out, in)
		}
	}
	return out, nil
}

func rating(v float64) *float64 { return &v }

func peers(n int) []ranking.UserID {
	out := make([]ranking.UserID, n)
	for i := range out {
		out[i] = ranking.UserID(fmt.Sprintf("peer-%02d", i))
	}
	return out
}

func newTestFilter(src InteractionSource) *CollaborativeFilter {
	return NewCollaborativeFilter(src, ranking.DefaultConfig().Collaborative, zerolog.Nop())
}

func TestCollaborativeFilter_Score(t *testing.T) {
	target := ranking.UserProfile{ID: "target", Income: 3000}
	item := ranking.Item{ID: "item-1"}

	tests := []struct {
		name         string
		users        []ranking.UserID
		interactions []ranking.Interaction
		want         float64
	}{
		{
			name: "no similar users",
			want: 0,
		},
		{
			name:  "peers without interactions",
			users: peers(5),
			want:  0,
		},
		{
			name:  "three positive peers",
			users: peers(5),
			interactions: []ranking.Interaction{
				{ItemID: "item-1", UserID: "peer-00", Action: "click"},
				{ItemID: "item-1", UserID: "peer-01", Action: "like"},
				{ItemID: "item-1", UserID: "peer-02", Action: "PURCHASE"},
			},
			want: 30,
		},
		{
			name:  "views and dismissals are not positive",
			users: peers(5),
			interactions: []ranking.Interaction{
				{ItemID: "item-1", UserID: "peer-00", Action: "view"},
				{ItemID: "item-1", UserID: "peer-01", Action: "dismiss"},
				{ItemID: "item-1", UserID: "peer-02", Action: "bogus"},
			},
			want: 0,
		},
		{
			name:  "repeated actions by one peer count once",
			users: peers(2),
			interactions: []ranking.Interaction{
				{ItemID: "item-1", UserID: "peer-00", Action: "click"},
				{ItemID: "item-1", UserID: "peer-00", Action: "purchase"},
			},
			want: 10,
		},
		{
			name:  "aliases are recognized",
			users: peers(2),
			interactions: []ranking.Interaction{
				{ItemID: "item-1", UserID: "peer-00", Action: "save"},
			},
			want: 10,
		},
		{
			name:  "high mean rating adds bonus",
			users: peers(5),
			interactions: []ranking.Interaction{
				{ItemID: "item-1", UserID: "peer-00", Action: "purchase", Rating: rating(5)},
				{ItemID: "item-1", UserID: "peer-01", Action: "purchase", Rating: rating(3)},
			},
			want: 40,
		},
		{
			name:  "low mean rating adds nothing",
			users: peers(5),
			interactions: []ranking.Interaction{
				{ItemID: "item-1", UserID: "peer-00", Action: "purchase", Rating: rating(4.5)},
				{ItemID: "item-1", UserID: "peer-01", Action: "purchase", Rating: rating(3)},
			},
			want: 20,
		},
		{
			name:  "non-peer interactions are ignored",
			users: peers(1),
			interactions: []ranking.Interaction{
				{ItemID: "item-1", UserID: "stranger", Action: "purchase", Rating: rating(5)},
				{ItemID: "item-1", UserID: "target", Action: "purchase", Rating: rating(5)},
			},
			want: 0,
		},
		{
			name:  "count term saturates and total is capped",
			users: append(peers(12), "target"),
			interactions: func() []ranking.Interaction {
				var out []ranking.Interaction
				for _, u := range peers(12) {
					out = append(out, ranking.Interaction{ItemID: "item-1", UserID: u, Action: "like", Rating: rating(5)})
				}
				return out
			}(),
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFilter(&fakeSource{users: tt.users, interactions: tt.interactions})
			res := f.Score(context.Background(), target, &item)
			if !res.Ok() {
				t.Fatalf("Score() unavailable: %v", res.Err)
			}
			if res.Value != tt.want {
				t.Errorf("Score() = %v, want %v", res.Value, tt.want)
			}
		})
	}
}

func TestCollaborativeFilter_PeerLimit(t *testing.T) {
	src := &fakeSource{users: append([]ranking.UserID{"target"}, peers(30)...)}
	for _, u := range peers(30) {
		src.interactions = append(src.interactions, ranking.Interaction{ItemID: "item-1", UserID: u, Action: "click"})
	}

	cfg := ranking.DefaultConfig().Collaborative
	cfg.PointsPerUser = 1
	f := NewCollaborativeFilter(src, cfg, zerolog.Nop())

	res := f.Score(context.Background(), ranking.UserProfile{ID: "target", Income: 1000}, &ranking.Item{ID: "item-1"})
	if !res.Ok() {
		t.Fatalf("Score() unavailable: %v", res.Err)
	}
	// limit 21 returns target plus 20 peers
	if res.Value != float64(cfg.MaxSimilarUsers) {
		t.Errorf("Score() = %v, want %v", res.Value, cfg.MaxSimilarUsers)
	}
	if src.lastLimit != cfg.MaxSimilarUsers+1 {
		t.Errorf("SimilarUsers limit = %d, want %d", src.lastLimit, cfg.MaxSimilarUsers+1)
	}
}

func TestCollaborativeFilter_Unavailable(t *testing.T) {
	errDown := errors.New("duckdb down")
	item := ranking.Item{ID: "item-1"}
	user := ranking.UserProfile{ID: "u", Income: 100}

	tests := []struct {
		name   string
		filter *CollaborativeFilter
	}{
		{"nil source", newTestFilter(nil)},
		{"similar users fail", newTestFilter(&fakeSource{usersErr: errDown})},
		{"interactions fail", newTestFilter(&fakeSource{users: peers(3), itemsErr: errDown})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.filter.Score(context.Background(), user, &item)
			if res.Ok() {
				t.Fatalf("Score() = %v, want unavailable", res.Value)
			}
			if !errors.Is(res.Err, ranking.ErrSignalUnavailable) {
				t.Errorf("Score() error = %v, want ErrSignalUnavailable", res.Err)
			}
			if got := res.OrDefault(ranking.DefaultCollaborativeScore); got != 0 {
				t.Errorf("OrDefault() = %v, want 0", got)
			}
		})
	}
}

func TestCollaborativeFilter_CachesPeers(t *testing.T) {
	src := &fakeSource{users: peers(3)}
	f := newTestFilter(src)
	user := ranking.UserProfile{ID: "u", Income: 2000}

	for i := 0; i < 5; i++ {
		f.Score(context.Background(), user, &ranking.Item{ID: ranking.ItemID(fmt.Sprintf("item-%d", i))})
	}
	if src.similarCalls != 1 {
		t.Errorf("SimilarUsers calls = %d, want 1", src.similarCalls)
	}

	user.Income = 2500
	f.Score(context.Background(), user, &ranking.Item{ID: "item-0"})
	if src.similarCalls != 2 {
		t.Errorf("SimilarUsers calls after income change = %d, want 2", src.similarCalls)
	}

	f.ResetPeers()
	f.Score(context.Background(), user, &ranking.Item{ID: "item-0"})
	if src.similarCalls != 3 {
		t.Errorf("SimilarUsers calls after reset = %d, want 3", src.similarCalls)
	}

	anon := ranking.UserProfile{Income: 2000}
	f.Score(context.Background(), anon, &ranking.Item{ID: "item-0"})
	f.Score(context.Background(), anon, &ranking.Item{ID: "item-0"})
	if src.similarCalls != 5 {
		t.Errorf("SimilarUsers calls for anonymous user = %d, want 5", src.similarCalls)
	}
}

func TestCollaborativeFilter_FailuresNotCached(t *testing.T) {
	src := &fakeSource{usersErr: errors.New("timeout")}
	f := newTestFilter(src)
	user := ranking.UserProfile{ID: "u", Income: 2000}

	if res := f.Score(context.Background(), user, &ranking.Item{ID: "a"}); res.Ok() {
		t.Fatal("Score() ok, want unavailable")
	}
	src.usersErr = nil
	src.users = peers(1)
	src.interactions = []ranking.Interaction{{ItemID: "a", UserID: "peer-00", Action: "purchase"}}

	res := f.Score(context.Background(), user, &ranking.Item{ID: "a"})
	if !res.Ok() || res.Value != 10 {
		t.Errorf("Score() = %+v, want 10", res)
	}
}
