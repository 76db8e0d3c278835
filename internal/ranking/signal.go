// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package ranking

import (
	"context"
	"errors"
	"math"
)

// Signal names one input of the fused score.
type Signal string

const (
	SignalBandit        Signal = "bandit"
	SignalCollaborative Signal = "collaborative"
	SignalRelevance     Signal = "relevance"
	SignalAffordability Signal = "affordability"
)

// Default scores used when a signal is unavailable.
const (
	DefaultBanditScore        = 50.0
	DefaultCollaborativeScore = 0.0
	DefaultRelevanceScore     = 0.0
	DefaultAffordabilityScore = 50.0
)

// MaxScore is the upper bound of every component and of the fused score.
const MaxScore = 100.0

// SignalResult is the outcome of a fallible scorer: a score, or the reason
// it could not be produced.
type SignalResult struct {
	Value float64
	Err   error
}

// Available returns a successful result.
func Available(v float64) SignalResult {
	return SignalResult{Value: v}
}

// Unavailable returns a failed result for signal.
func Unavailable(signal Signal, err error) SignalResult {
	return SignalResult{Err: NewSignalError(signal, err)}
}

// Ok reports whether the result carries a usable value.
func (r SignalResult) Ok() bool {
	return r.Err == nil && !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0)
}

// OrDefault returns the clamped value, or def when unavailable.
func (r SignalResult) OrDefault(def float64) float64 {
	if !r.Ok() {
		return def
	}
	return ClampScore(r.Value)
}

// Reason classifies the failure for metrics: "timeout", "canceled",
// "invalid" or "error". Empty when Ok.
func (r SignalResult) Reason() string {
	switch {
	case r.Ok():
		return ""
	case r.Err == nil:
		return "invalid"
	case errors.Is(r.Err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(r.Err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// ClampScore bounds v to [0,MaxScore]. NaN maps to 0.
func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}
