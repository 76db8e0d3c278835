// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package ranking

import (
	"context"
	"math/rand/v2"
	"time"
)

// ItemID identifies a catalog item.
type ItemID string

// UserID identifies a user.
type UserID string

// ClusterID is the offline-assigned similarity cluster of an item.
type ClusterID int

// Item is a ranking candidate. Owned by the retrieval collaborator and
// treated as immutable for the duration of a request.
type Item struct {
	ID          ItemID    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	ClusterID   ClusterID `json:"cluster_id"`
	Price       float64   `json:"price"`

	// Rating is the average catalog rating (0-5).
	Rating float64 `json:"rating"`

	// Affordability is supplied by the upstream financial filter (0-100).
	// Nil means the filter did not score this item.
	Affordability *float64 `json:"affordability,omitempty"`
}

// UserProfile carries the requesting user's declared attributes.
type UserProfile struct {
	ID UserID `json:"id"`

	// Income is the declared monthly income used to find peer users.
	Income float64 `json:"income"`

	// Preferences are declared category preferences.
	Preferences []string `json:"preferences,omitempty"`
}

// BanditState parameterizes a Beta distribution over engagement probability.
type BanditState struct {
	Success float64 `json:"success"`
	Failure float64 `json:"failure"`
}

const (
	// StateFloor is the minimum value of either shape parameter.
	StateFloor = 0.01

	// PriorShape is the uniform prior assigned to unseen items.
	PriorShape = 1.0
)

// PriorState returns the uniform Beta(1,1) prior.
func PriorState() BanditState {
	return BanditState{Success: PriorShape, Failure: PriorShape}
}

// Mean returns the posterior mean success/(success+failure).
func (s BanditState) Mean() float64 {
	total := s.Success + s.Failure
	if total <= 0 {
		return 0.5
	}
	return s.Success / total
}

// Clamp raises both shapes to StateFloor.
func (s BanditState) Clamp() BanditState {
	if !(s.Success >= StateFloor) { // also catches NaN
		s.Success = StateFloor
	}
	if !(s.Failure >= StateFloor) {
		s.Failure = StateFloor
	}
	return s
}

// Interaction is a recorded user action, as seen by the collaborative filter.
type Interaction struct {
	ItemID     ItemID    `json:"item_id"`
	UserID     UserID    `json:"user_id"`
	Action     string    `json:"action"`
	Rating     *float64  `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ScoredItem is an item with its component scores and the fused score.
// All scores are in [0,100].
type ScoredItem struct {
	Item Item `json:"item"`

	Bandit        float64 `json:"bandit"`
	Collaborative float64 `json:"collaborative"`
	Relevance     float64 `json:"relevance"`
	Affordability float64 `json:"affordability"`

	// Final is the weighted combination of the four components.
	Final float64 `json:"final"`

	// Fallbacks lists the signals that contributed their default value.
	Fallbacks []Signal `json:"fallbacks,omitempty"`
}

// RankedItem is a ScoredItem placed in the final list.
type RankedItem struct {
	ScoredItem

	// Rank is the 1-based position.
	Rank int `json:"rank"`

	// Alternatives are same-cluster substitutes, best first (0-3 entries).
	Alternatives []ItemID `json:"alternatives"`
}

// RankedResult is the output of one ranking request.
type RankedResult struct {
	Items    []RankedItem   `json:"items"`
	Metadata ResultMetadata `json:"metadata"`
}

// ResultMetadata describes how a result was produced.
type ResultMetadata struct {
	RequestID   string        `json:"request_id,omitempty"`
	Candidates  int           `json:"candidates"`
	Scored      int           `json:"scored"`
	Degraded    int           `json:"degraded"`
	Reranker    string        `json:"reranker,omitempty"`
	Seed        uint64        `json:"seed"`
	Latency     time.Duration `json:"latency"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Request is a ranking request.
type Request struct {
	Query      string      `json:"query"`
	User       UserProfile `json:"user"`
	Candidates []Item      `json:"candidates"`

	// RequestID is propagated to logs; generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// BanditReader supplies per-item bandit state to the fusion step.
type BanditReader interface {
	Get(ctx context.Context, id ItemID) (BanditState, error)
}

// RelevanceScorer scores query/item textual relevance. Implementations must
// be pure functions of their inputs.
type RelevanceScorer interface {
	Score(query string, item *Item) float64
}

// CollaborativeScorer scores an item from the behavior of similar users.
type CollaborativeScorer interface {
	Score(ctx context.Context, user UserProfile, item *Item) SignalResult
}

// Reranker reorders a scored list sorted by Final descending. The output
// must be a permutation of the input.
type Reranker interface {
	Name() string
	Rerank(items []ScoredItem, rng *rand.Rand) []ScoredItem
}

// AlternativeFinder returns same-cluster substitutes for an item.
type AlternativeFinder interface {
	Alternatives(ctx context.Context, item *Item, pool []Item, limit int) []ItemID
}

// ProfileRecorder stores the declared profile of a ranked user so later
// requests can find that user as a peer.
type ProfileRecorder interface {
	UpsertProfile(ctx context.Context, profile UserProfile) error
}
