// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package ranking

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/adaptrank/internal/metrics"
)

// errNoSource marks a signal whose scorer is not configured.
var errNoSource = errors.New("no source configured")

// Fusion combines the four component scores of one candidate.
// It holds no mutable state and is safe for concurrent use.
type Fusion struct {
	weights       FusionWeights
	mode          BanditMode
	timeout       time.Duration
	bandit        BanditReader
	relevance     RelevanceScorer
	collaborative CollaborativeScorer
}

// NewFusion creates a Fusion. Nil scorers make their signal fall back to
// its default on every call.
func NewFusion(cfg *Config, bandit BanditReader, relevance RelevanceScorer, collaborative CollaborativeScorer) *Fusion {
	return &Fusion{
		weights:       cfg.Weights,
		mode:          cfg.Bandit.Mode,
		timeout:       cfg.Limits.SignalTimeout,
		bandit:        bandit,
		relevance:     relevance,
		collaborative: collaborative,
	}
}

// Score produces the ScoredItem for one candidate. rng must be owned by the
// caller; it is used only in sample mode.
//
//nolint:gocritic // hugeParam: user passed by value for immutability
func (f *Fusion) Score(ctx context.Context, query string, user UserProfile, item *Item, rng *rand.Rand) ScoredItem {
	scored := ScoredItem{Item: *item}

	bandit := f.banditScore(ctx, item.ID, rng)
	scored.Bandit = f.resolve(&scored, SignalBandit, bandit, DefaultBanditScore)

	collab := Unavailable(SignalCollaborative, errNoSource)
	if f.collaborative != nil {
		cctx, cancel := context.WithTimeout(ctx, f.timeout)
		collab = f.collaborative.Score(cctx, user, item)
		cancel()
	}
	scored.Collaborative = f.resolve(&scored, SignalCollaborative, collab, DefaultCollaborativeScore)

	relevance := Unavailable(SignalRelevance, errNoSource)
	if f.relevance != nil {
		relevance = Available(f.relevance.Score(query, item))
	}
	scored.Relevance = f.resolve(&scored, SignalRelevance, relevance, DefaultRelevanceScore)

	affordability := Unavailable(SignalAffordability, errNoSource)
	if item.Affordability != nil {
		affordability = Available(*item.Affordability)
	}
	scored.Affordability = f.resolve(&scored, SignalAffordability, affordability, DefaultAffordabilityScore)

	scored.Final = f.Combine(scored.Bandit, scored.Collaborative, scored.Relevance, scored.Affordability)
	return scored
}

// Combine returns the weighted sum of the components, clamped to [0,100].
func (f *Fusion) Combine(bandit, collaborative, relevance, affordability float64) float64 {
	w := f.weights
	return ClampScore(w.Bandit*bandit +
		w.Collaborative*collaborative +
		w.Relevance*relevance +
		w.Affordability*affordability)
}

func (f *Fusion) banditScore(ctx context.Context, id ItemID, rng *rand.Rand) SignalResult {
	if f.bandit == nil {
		return Unavailable(SignalBandit, errNoSource)
	}

	bctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	state, err := f.bandit.Get(bctx, id)
	if err != nil {
		return Unavailable(SignalBandit, err)
	}

	if f.mode == BanditModeMean {
		return Available(state.Clamp().Mean() * MaxScore)
	}
	return Available(SampleBeta(rng, state) * MaxScore)
}

// resolve applies the default for a failed signal and records the fallback.
func (f *Fusion) resolve(scored *ScoredItem, signal Signal, r SignalResult, def float64) float64 {
	if r.Ok() {
		return ClampScore(r.Value)
	}

	reason := r.Reason()
	if errors.Is(r.Err, errNoSource) {
		reason = "absent"
	}
	scored.Fallbacks = append(scored.Fallbacks, signal)
	metrics.RecordSignalFallback(string(signal), reason)
	return def
}

// degraded reports whether an external signal of s fell back to its default.
func degraded(s *ScoredItem) bool {
	for _, sig := range s.Fallbacks {
		if sig == SignalBandit || sig == SignalCollaborative {
			return true
		}
	}
	return false
}
