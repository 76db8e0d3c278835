// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package ranking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidActionKind rejects feedback with an unrecognized action.
	// Such events are dropped, never retried.
	ErrInvalidActionKind = errors.New("invalid action kind")

	// ErrSignalUnavailable marks a scorer whose upstream dependency failed
	// or timed out. It is recovered locally and never returned from Rank.
	ErrSignalUnavailable = errors.New("signal unavailable")

	// ErrEmptyCandidateSet describes a request without candidates. Rank
	// answers it with an empty result; the error exists for logging.
	ErrEmptyCandidateSet = errors.New("empty candidate set")
)

// SignalError wraps the failure of a single signal source.
type SignalError struct {
	Signal Signal
	Err    error
}

// NewSignalError wraps err as an unavailable signal.
func NewSignalError(signal Signal, err error) *SignalError {
	return &SignalError{Signal: signal, Err: err}
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%s signal unavailable: %v", e.Signal, e.Err)
}

// Unwrap exposes both ErrSignalUnavailable and the cause.
func (e *SignalError) Unwrap() []error {
	return []error{ErrSignalUnavailable, e.Err}
}
