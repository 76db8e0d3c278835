// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package bandit stores the per-item Beta state behind Thompson sampling.
//
// Every backend makes ApplyUpdate atomic per item: concurrent updates to
// the same item are serialized and none is lost, while updates to distinct
// items never contend on a global lock. Reads are lock-free snapshots and
// never create state; the first update of an item materializes it at the
// uniform prior.
package bandit

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// DefaultKeyPrefix prefixes item keys in persistent backends.
const DefaultKeyPrefix = "thompson:"

var (
	// ErrInvalidDelta rejects NaN or infinite updates.
	ErrInvalidDelta = errors.New("invalid bandit delta")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("bandit store closed")

	// ErrEmptyItemID rejects updates without an item.
	ErrEmptyItemID = errors.New("empty item id")
)

// Store is the shared bandit state consulted by ranking and mutated by
// feedback ingestion.
type Store interface {
	ranking.BanditReader

	// ApplyUpdate adds max(delta,0) to the success shape and max(-delta,0)
	// to the failure shape, then floors both. It returns the new state.
	ApplyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error)

	Close() error
}

// Scanner iterates over all persisted states. Iteration order is
// unspecified and fn must not call back into the store.
type Scanner interface {
	Scan(ctx context.Context, fn func(id ranking.ItemID, state ranking.BanditState) error) error
}

// Backend is a complete store implementation.
type Backend interface {
	Store
	Scanner

	// Name returns the backend name used in metrics and logs.
	Name() string

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Apply returns s updated by delta and floored.
func Apply(s ranking.BanditState, delta float64) ranking.BanditState {
	switch {
	case delta > 0:
		s.Success += delta
	case delta < 0:
		s.Failure -= delta
	}
	return s.Clamp()
}

func checkUpdate(id ranking.ItemID, delta float64) error {
	if id == "" {
		return ErrEmptyItemID
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDelta, delta)
	}
	return nil
}
