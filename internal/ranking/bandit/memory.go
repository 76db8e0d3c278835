// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package bandit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking"
)

// cell guards the state of one item.
type cell struct {
	mu    sync.Mutex
	state ranking.BanditState
}

// MemoryStore keeps bandit state in process memory.
// State is lost on restart.
type MemoryStore struct {
	cells  sync.Map // ranking.ItemID -> *cell
	size   atomic.Int64
	closed atomic.Bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Name implements Backend.
func (s *MemoryStore) Name() string { return BackendMemory }

// Get returns the state of id, or the prior if it has never been updated.
func (s *MemoryStore) Get(ctx context.Context, id ranking.ItemID) (ranking.BanditState, error) {
	if s.closed.Load() {
		return ranking.BanditState{}, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return ranking.BanditState{}, err
	}

	v, ok := s.cells.Load(id)
	if !ok {
		return ranking.PriorState(), nil
	}
	c := v.(*cell)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, nil
}

// ApplyUpdate implements Store.
func (s *MemoryStore) ApplyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error) {
	start := time.Now()
	state, err := s.applyUpdate(ctx, id, delta)
	metrics.RecordBanditUpdate(BackendMemory, time.Since(start), err)
	return state, err
}

func (s *MemoryStore) applyUpdate(ctx context.Context, id ranking.ItemID, delta float64) (ranking.BanditState, error) {
	if s.closed.Load() {
		return ranking.BanditState{}, ErrStoreClosed
	}
	if err := checkUpdate(id, delta); err != nil {
		return ranking.BanditState{}, err
	}
	if err := ctx.Err(); err != nil {
		return ranking.BanditState{}, err
	}

	v, ok := s.cells.Load(id)
	if !ok {
		var loaded bool
		v, loaded = s.cells.LoadOrStore(id, &cell{state: ranking.PriorState()})
		if !loaded {
			s.size.Add(1)
		}
	}

	c := v.(*cell)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Apply(c.state, delta)
	return c.state, nil
}

// Scan implements Scanner.
func (s *MemoryStore) Scan(ctx context.Context, fn func(ranking.ItemID, ranking.BanditState) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	var err error
	s.cells.Range(func(key, value any) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		c := value.(*cell)
		c.mu.Lock()
		state := c.state
		c.mu.Unlock()
		err = fn(key.(ranking.ItemID), state)
		return err == nil
	})
	return err
}

// Len returns the number of items with state.
func (s *MemoryStore) Len() int {
	return int(s.size.Load())
}

// Ping implements Backend.
func (s *MemoryStore) Ping(_ context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}

// Close releases the store. Subsequent calls fail with ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}
