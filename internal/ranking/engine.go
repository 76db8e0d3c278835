// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package ranking

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/adaptrank/internal/logging"
	"github.com/tomtom215/adaptrank/internal/metrics"
)

// Dependencies are the collaborators of an Engine. Any of them may be nil:
// a nil scorer contributes its default, a nil Reranker keeps the
// exploitation order, a nil AlternativeFinder attaches no substitutes and a
// nil ProfileRecorder stores nothing.
type Dependencies struct {
	Bandit        BanditReader
	Relevance     RelevanceScorer
	Collaborative CollaborativeScorer
	Reranker      Reranker
	Alternatives  AlternativeFinder
	Profiles      ProfileRecorder
}

// Engine ranks candidate sets. It is safe for concurrent use; requests share
// no mutable state except the seed generator.
type Engine struct {
	config *Config
	logger zerolog.Logger

	fusion       *Fusion
	reranker     Reranker
	alternatives AlternativeFinder
	profiles     ProfileRecorder

	// Random source for per-request seeds (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex

	requestCount  atomic.Int64
	degradedCount atomic.Int64
	errorCount    atomic.Int64
}

// Stats are cumulative engine counters.
type Stats struct {
	Requests int64 `json:"requests"`
	Degraded int64 `json:"degraded"`
	Errors   int64 `json:"errors"`
}

// NewEngine creates a ranking engine. The configuration is copied.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	seed := cfg.Bandit.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Engine{
		config:       cfg,
		logger:       logger.With().Str("component", "ranking").Logger(),
		fusion:       NewFusion(cfg, deps.Bandit, deps.Relevance, deps.Collaborative),
		reranker:     deps.Reranker,
		alternatives: deps.Alternatives,
		profiles:     deps.Profiles,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // exploration noise, not security
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Stats returns cumulative counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests: e.requestCount.Load(),
		Degraded: e.degradedCount.Load(),
		Errors:   e.errorCount.Load(),
	}
}

// Rank scores, orders and diversifies req.Candidates and returns at most
// Diversity.WindowSize items. An empty candidate set yields an empty result
// and a nil error. Signal failures degrade individual scores and never fail
// the request; only cancellation of ctx does.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Rank(ctx context.Context, req Request) (*RankedResult, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", string(req.User.ID)).
		Logger()

	if len(req.Candidates) == 0 {
		logger.Debug().Err(ErrEmptyCandidateSet).Msg("nothing to rank")
		metrics.RecordRankRequest("empty", 0, time.Since(start))
		return e.emptyResult(req, start), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, e.fail(err, len(req.Candidates), start)
	}

	candidates := req.Candidates
	if len(candidates) > e.config.Limits.MaxCandidates {
		logger.Warn().
			Int("candidates", len(candidates)).
			Int("max_candidates", e.config.Limits.MaxCandidates).
			Msg("truncating candidate set")
		candidates = candidates[:e.config.Limits.MaxCandidates]
	}

	seed := e.nextSeed()

	rctx, cancel := context.WithTimeout(ctx, e.config.Limits.RequestTimeout)
	defer cancel()
	rctx = logging.ContextWithRequestID(rctx, req.RequestID)

	profileDone := e.recordProfile(rctx, req.User, logger)
	scored := e.scoreCandidates(rctx, req, candidates, seed)
	<-profileDone
	if err := ctx.Err(); err != nil {
		return nil, e.fail(err, len(candidates), start)
	}

	sortByFinal(scored)

	window := e.applyReranker(scored, seed)
	items := e.attachAlternatives(rctx, window, candidates)
	if err := ctx.Err(); err != nil {
		return nil, e.fail(err, len(candidates), start)
	}

	result := e.buildResult(req, items, len(candidates), seed, start)

	outcome := "ok"
	if result.Metadata.Degraded > 0 {
		outcome = "degraded"
		e.degradedCount.Add(1)
	}
	metrics.RecordRankRequest(outcome, len(candidates), result.Metadata.Latency)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(result.Items)).
		Int("degraded", result.Metadata.Degraded).
		Dur("latency", result.Metadata.Latency).
		Msg("ranking complete")

	return result, nil
}

// nextSeed draws the seed of one request.
func (e *Engine) nextSeed() uint64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Uint64()
}

// scoreCandidates fuses all candidates in parallel. Item i samples from its
// own stream so results do not depend on goroutine scheduling.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoreCandidates(ctx context.Context, req Request, candidates []Item, seed uint64) []ScoredItem {
	scored := make([]ScoredItem, len(candidates))

	var g errgroup.Group
	g.SetLimit(e.config.Limits.MaxConcurrency)
	for i := range candidates {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(i))) //nolint:gosec // Thompson sampling
			scored[i] = e.fusion.Score(ctx, req.Query, req.User, &candidates[i], rng)
			return nil
		})
	}
	_ = g.Wait()

	return scored
}

// recordProfile stores user alongside scoring, bounded by the signal
// timeout. The returned channel closes when the write is finished. Failures
// are logged and never affect the ranking.
//
//nolint:gocritic // hugeParam: user passed by value for immutability
func (e *Engine) recordProfile(ctx context.Context, user UserProfile, logger zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if e.profiles == nil || user.ID == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		pctx, cancel := context.WithTimeout(ctx, e.config.Limits.SignalTimeout)
		defer cancel()
		if err := e.profiles.UpsertProfile(pctx, user); err != nil {
			logger.Warn().Err(err).Msg("failed to record user profile")
		}
	}()
	return done
}

// sortByFinal orders by fused score descending, ties broken by item ID.
func sortByFinal(items []ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Final != items[j].Final {
			return items[i].Final > items[j].Final
		}
		return items[i].Item.ID < items[j].Item.ID
	})
}

// applyReranker runs the diversity pass and cuts the list to the window.
func (e *Engine) applyReranker(items []ScoredItem, seed uint64) []ScoredItem {
	if e.reranker != nil && e.config.Diversity.Enabled {
		rng := rand.New(rand.NewPCG(seed, math.MaxUint64)) //nolint:gosec // exploration noise
		items = e.reranker.Rerank(items, rng)
	}

	if n := e.config.Diversity.WindowSize; len(items) > n {
		items = items[:n]
	}
	return items
}

// attachAlternatives annotates each window item with same-cluster
// substitutes drawn from the candidate pool.
func (e *Engine) attachAlternatives(ctx context.Context, window []ScoredItem, pool []Item) []RankedItem {
	ranked := make([]RankedItem, len(window))
	for i := range window {
		ranked[i] = RankedItem{ScoredItem: window[i], Rank: i + 1, Alternatives: []ItemID{}}
	}

	limit := e.config.Alternatives.Limit
	if e.alternatives == nil || limit == 0 {
		return ranked
	}

	var g errgroup.Group
	g.SetLimit(e.config.Limits.MaxConcurrency)
	for i := range ranked {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, e.config.Limits.SignalTimeout)
			defer cancel()
			alts := e.alternatives.Alternatives(actx, &ranked[i].Item, pool, limit)
			if len(alts) > limit {
				alts = alts[:limit]
			}
			if alts != nil {
				ranked[i].Alternatives = alts
			}
			metrics.AlternativesFound.Observe(float64(len(ranked[i].Alternatives)))
			return nil
		})
	}
	_ = g.Wait()

	return ranked
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResult(req Request, items []RankedItem, candidates int, seed uint64, start time.Time) *RankedResult {
	degradedItems := 0
	for i := range items {
		if degraded(&items[i].ScoredItem) {
			degradedItems++
		}
	}

	reranker := ""
	if e.reranker != nil && e.config.Diversity.Enabled {
		reranker = e.reranker.Name()
	}

	return &RankedResult{
		Items: items,
		Metadata: ResultMetadata{
			RequestID:   req.RequestID,
			Candidates:  len(req.Candidates),
			Scored:      candidates,
			Degraded:    degradedItems,
			Reranker:    reranker,
			Seed:        seed,
			Latency:     time.Since(start),
			GeneratedAt: time.Now(),
		},
	}
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) emptyResult(req Request, start time.Time) *RankedResult {
	return &RankedResult{
		Items: []RankedItem{},
		Metadata: ResultMetadata{
			RequestID:   req.RequestID,
			Latency:     time.Since(start),
			GeneratedAt: time.Now(),
		},
	}
}

func (e *Engine) fail(err error, candidates int, start time.Time) error {
	e.errorCount.Add(1)
	metrics.RecordRankRequest("canceled", candidates, time.Since(start))
	return fmt.Errorf("rank: %w", err)
}
