// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package ranking

import (
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the ranking engine.
// The engine keeps its own copy; mutating a Config after NewEngine has no
// effect on the running engine.
type Config struct {
	// Weights defines the contribution of each signal to the fused score.
	Weights FusionWeights `json:"weights" koanf:"weights"`

	// Bandit controls how bandit state becomes a score.
	Bandit BanditConfig `json:"bandit" koanf:"bandit"`

	// Diversity contains parameters for the exploration reranker.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`

	// Collaborative contains parameters for the similar-user signal.
	Collaborative CollaborativeConfig `json:"collaborative" koanf:"collaborative"`

	// Alternatives contains parameters for cluster substitutes.
	Alternatives AlternativesConfig `json:"alternatives" koanf:"alternatives"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// FusionWeights are the per-signal weights of the fused score.
// They must be non-negative and sum to at most 1 so the fused score stays
// within [0,100].
type FusionWeights struct {
	// Default: 0.4.
	Bandit float64 `json:"bandit" koanf:"bandit"`

	// Default: 0.3.
	Collaborative float64 `json:"collaborative" koanf:"collaborative"`

	// Default: 0.2.
	Relevance float64 `json:"relevance" koanf:"relevance"`

	// Default: 0.1.
	Affordability float64 `json:"affordability" koanf:"affordability"`
}

// Sum returns the total weight.
func (w FusionWeights) Sum() float64 {
	return w.Bandit + w.Collaborative + w.Relevance + w.Affordability
}

// BanditMode selects how bandit state is turned into a score.
type BanditMode string

const (
	// BanditModeSample draws one Thompson sample per item per request.
	BanditModeSample BanditMode = "sample"

	// BanditModeMean uses the posterior mean. This is the exploitation-only
	// setting used for offline evaluation and deterministic replays.
	BanditModeMean BanditMode = "mean"
)

// BanditConfig contains bandit scoring parameters.
type BanditConfig struct {
	// Mode is sample or mean.
	// Default: sample.
	Mode BanditMode `json:"mode" koanf:"mode"`

	// Seed seeds the engine's generator. Zero seeds from the clock.
	// Default: 0.
	Seed uint64 `json:"seed" koanf:"seed"`
}

// DiversityConfig contains parameters for the exploration reranker.
type DiversityConfig struct {
	// Enabled toggles the reranker. When false the window is the plain
	// exploitation order.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// WindowSize is N, the number of items returned and reordered.
	// Default: 10.
	WindowSize int `json:"window_size" koanf:"window_size"`

	// NoiseFraction is the amplitude of the uniform perturbation applied to
	// positions N-2 and N-1, as a fraction of the score. Zero disables noise.
	// Default: 0.05.
	NoiseFraction float64 `json:"noise_fraction" koanf:"noise_fraction"`
}

// CollaborativeConfig contains parameters for the similar-user signal.
type CollaborativeConfig struct {
	// MaxSimilarUsers bounds the peer set.
	// Default: 20.
	MaxSimilarUsers int `json:"max_similar_users" koanf:"max_similar_users"`

	// IncomeTolerance is the relative income band defining a peer.
	// Default: 0.15.
	IncomeTolerance float64 `json:"income_tolerance" koanf:"income_tolerance"`

	// PointsPerUser is awarded for each peer with a positive interaction.
	// Default: 10.
	PointsPerUser float64 `json:"points_per_user" koanf:"points_per_user"`

	// RatingBonus is added when the peers' mean rating reaches RatingThreshold.
	// Default: 20.
	RatingBonus float64 `json:"rating_bonus" koanf:"rating_bonus"`

	// RatingThreshold is the minimum mean peer rating for RatingBonus.
	// Default: 4.0.
	RatingThreshold float64 `json:"rating_threshold" koanf:"rating_threshold"`

	// CacheTTL is how long a user's peer set is reused.
	// Default: 1m.
	CacheTTL time.Duration `json:"cache_ttl" koanf:"cache_ttl"`

	// CacheSize bounds the number of cached peer sets.
	// Default: 10000.
	CacheSize int `json:"cache_size" koanf:"cache_size"`
}

// AlternativesConfig contains parameters for cluster substitutes.
type AlternativesConfig struct {
	// Limit is the maximum number of substitutes per item.
	// Default: 3.
	Limit int `json:"limit" koanf:"limit"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates truncates oversized candidate lists.
	// Default: 200.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// MaxConcurrency bounds the goroutines scoring one request.
	// Default: 16.
	MaxConcurrency int `json:"max_concurrency" koanf:"max_concurrency"`

	// SignalTimeout bounds each external signal lookup.
	// Default: 50ms.
	SignalTimeout time.Duration `json:"signal_timeout" koanf:"signal_timeout"`

	// RequestTimeout bounds a whole ranking request.
	// Default: 300ms.
	RequestTimeout time.Duration `json:"request_timeout" koanf:"request_timeout"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: FusionWeights{
			Bandit:        0.4,
			Collaborative: 0.3,
			Relevance:     0.2,
			Affordability: 0.1,
		},
		Bandit: BanditConfig{
			Mode: BanditModeSample,
		},
		Diversity: DiversityConfig{
			Enabled:       true,
			WindowSize:    10,
			NoiseFraction: 0.05,
		},
		Collaborative: CollaborativeConfig{
			MaxSimilarUsers: 20,
			IncomeTolerance: 0.15,
			PointsPerUser:   10,
			RatingBonus:     20,
			RatingThreshold: 4.0,
			CacheTTL:        time.Minute,
			CacheSize:       10000,
		},
		Alternatives: AlternativesConfig{
			Limit: 3,
		},
		Limits: LimitsConfig{
			MaxCandidates:  200,
			MaxConcurrency: 16,
			SignalTimeout:  50 * time.Millisecond,
			RequestTimeout: 300 * time.Millisecond,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	for name, w := range map[string]float64{
		"weights.bandit":        c.Weights.Bandit,
		"weights.collaborative": c.Weights.Collaborative,
		"weights.relevance":     c.Weights.Relevance,
		"weights.affordability": c.Weights.Affordability,
	} {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%s must be non-negative, got %f", name, w)
		}
	}
	if sum := c.Weights.Sum(); sum <= 0 || sum > 1+1e-9 {
		return fmt.Errorf("weights must sum to (0, 1], got %f", sum)
	}

	switch c.Bandit.Mode {
	case BanditModeSample, BanditModeMean:
	default:
		return fmt.Errorf("bandit.mode must be %q or %q, got %q", BanditModeSample, BanditModeMean, c.Bandit.Mode)
	}

	if c.Diversity.WindowSize < 1 {
		return fmt.Errorf("diversity.window_size must be positive, got %d", c.Diversity.WindowSize)
	}
	if c.Diversity.NoiseFraction < 0 || c.Diversity.NoiseFraction > 1 {
		return fmt.Errorf("diversity.noise_fraction must be in [0, 1], got %f", c.Diversity.NoiseFraction)
	}

	if c.Collaborative.MaxSimilarUsers < 1 {
		return fmt.Errorf("collaborative.max_similar_users must be positive, got %d", c.Collaborative.MaxSimilarUsers)
	}
	if c.Collaborative.IncomeTolerance < 0 || c.Collaborative.IncomeTolerance > 1 {
		return fmt.Errorf("collaborative.income_tolerance must be in [0, 1], got %f", c.Collaborative.IncomeTolerance)
	}
	if c.Collaborative.PointsPerUser < 0 || c.Collaborative.RatingBonus < 0 {
		return fmt.Errorf("collaborative points must be non-negative")
	}
	if c.Collaborative.RatingThreshold < 0 || c.Collaborative.RatingThreshold > 5 {
		return fmt.Errorf("collaborative.rating_threshold must be in [0, 5], got %f", c.Collaborative.RatingThreshold)
	}

	if c.Alternatives.Limit < 0 {
		return fmt.Errorf("alternatives.limit must be non-negative, got %d", c.Alternatives.Limit)
	}

	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.MaxConcurrency < 1 {
		return fmt.Errorf("limits.max_concurrency must be positive, got %d", c.Limits.MaxConcurrency)
	}
	if c.Limits.SignalTimeout <= 0 {
		return fmt.Errorf("limits.signal_timeout must be positive, got %v", c.Limits.SignalTimeout)
	}
	if c.Limits.RequestTimeout < c.Limits.SignalTimeout {
		return fmt.Errorf("limits.request_timeout must be >= limits.signal_timeout, got %v < %v",
			c.Limits.RequestTimeout, c.Limits.SignalTimeout)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs hold value types only.
	clone := *c
	return &clone
}
