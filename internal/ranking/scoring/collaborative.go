// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/cache"
	"github.com/tomtom215/adaptrank/internal/ranking"
	"github.com/tomtom215/adaptrank/internal/ranking/feedback"
)

// errNoSource is reported when the filter was built without a source.
var errNoSource = errors.New("no interaction source configured")

// InteractionSource is the user-similarity collaborator.
type InteractionSource interface {
	// SimilarUsers returns at most limit users whose income lies within
	// tolerance (relative) of target's. The target itself may be included.
	SimilarUsers(ctx context.Context, target ranking.UserProfile, tolerance float64, limit int) ([]ranking.UserID, error)

	// Interactions returns the recorded interactions of users with item.
	Interactions(ctx context.Context, item ranking.ItemID, users []ranking.UserID) ([]ranking.Interaction, error)
}

// peerKey identifies a cached peer set. Income is part of the key so a
// profile update is not answered from a stale band.
type peerKey struct {
	user   ranking.UserID
	income float64
}

// CollaborativeFilter scores an item from the behavior of users with a
// similar declared income.
//
//	score = min(100, PointsPerUser * positiveUsers)
//	      + RatingBonus (if the peers' mean rating >= RatingThreshold)
//
// capped at ranking.MaxScore. A user with no peers scores 0. Source
// failures are returned as unavailable results and never abort ranking.
type CollaborativeFilter struct {
	source InteractionSource
	cfg    ranking.CollaborativeConfig
	peers  *cache.LRU[peerKey, []ranking.UserID]
	logger zerolog.Logger
}

// NewCollaborativeFilter creates a collaborative filter over source.
func NewCollaborativeFilter(source InteractionSource, cfg ranking.CollaborativeConfig, logger zerolog.Logger) *CollaborativeFilter {
	return &CollaborativeFilter{
		source: source,
		cfg:    cfg,
		peers:  cache.NewLRU[peerKey, []ranking.UserID]("similar_users", cfg.CacheSize, cfg.CacheTTL),
		logger: logger.With().Str("component", "collaborative").Logger(),
	}
}

// Score implements ranking.CollaborativeScorer.
func (f *CollaborativeFilter) Score(ctx context.Context, user ranking.UserProfile, item *ranking.Item) ranking.SignalResult {
	if f.source == nil {
		return ranking.Unavailable(ranking.SignalCollaborative, errNoSource)
	}
	if item == nil {
		return ranking.Available(ranking.DefaultCollaborativeScore)
	}

	peers, err := f.similarUsers(ctx, user)
	if err != nil {
		return ranking.Unavailable(ranking.SignalCollaborative, err)
	}
	if len(peers) == 0 {
		return ranking.Available(0)
	}

	interactions, err := f.source.Interactions(ctx, item.ID, peers)
	if err != nil {
		return ranking.Unavailable(ranking.SignalCollaborative, fmt.Errorf("interactions for %s: %w", item.ID, err))
	}

	return ranking.Available(f.aggregate(peers, interactions))
}

// aggregate applies the scoring rule to the peers' interactions with one
// item. Interactions by users outside peers are ignored.
func (f *CollaborativeFilter) aggregate(peers []ranking.UserID, interactions []ranking.Interaction) float64 {
	members := make(map[ranking.UserID]struct{}, len(peers))
	for _, p := range peers {
		members[p] = struct{}{}
	}

	positive := make(map[ranking.UserID]struct{})
	var ratingSum float64
	var ratingCount int

	for i := range interactions {
		in := &interactions[i]
		if _, ok := members[in.UserID]; !ok {
			continue
		}
		if kind, err := feedback.ParseActionKind(in.Action); err == nil && kind.Positive() {
			positive[in.UserID] = struct{}{}
		}
		if in.Rating != nil && !math.IsNaN(*in.Rating) {
			ratingSum += *in.Rating
			ratingCount++
		}
	}

	score := math.Min(ranking.MaxScore, f.cfg.PointsPerUser*float64(len(positive)))
	if ratingCount > 0 && ratingSum/float64(ratingCount) >= f.cfg.RatingThreshold {
		score += f.cfg.RatingBonus
	}
	return ranking.ClampScore(score)
}

// similarUsers returns the peer set of user, excluding user, from cache
// when possible.
func (f *CollaborativeFilter) similarUsers(ctx context.Context, user ranking.UserProfile) ([]ranking.UserID, error) {
	key := peerKey{user: user.ID, income: user.Income}
	cacheable := user.ID != ""
	if cacheable {
		if peers, ok := f.peers.Get(key); ok {
			return peers, nil
		}
	}

	limit := f.cfg.MaxSimilarUsers
	if user.ID != "" {
		limit++ // room for the target, which is dropped below
	}
	users, err := f.source.SimilarUsers(ctx, user, f.cfg.IncomeTolerance, limit)
	if err != nil {
		return nil, fmt.Errorf("similar users of %q: %w", user.ID, err)
	}

	peers := make([]ranking.UserID, 0, len(users))
	seen := make(map[ranking.UserID]struct{}, len(users))
	for _, u := range users {
		if u == user.ID {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		peers = append(peers, u)
		if len(peers) == f.cfg.MaxSimilarUsers {
			break
		}
	}

	if cacheable {
		f.peers.Add(key, peers)
	}
	f.logger.Debug().Str("user_id", string(user.ID)).Int("peers", len(peers)).Msg("Resolved similar users")
	return peers, nil
}

// ResetPeers drops every cached peer set.
func (f *CollaborativeFilter) ResetPeers() {
	f.peers.Clear()
}
