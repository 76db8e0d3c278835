// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/adaptrank/internal/metrics"
	"github.com/tomtom215/adaptrank/internal/ranking/bandit"
)

// BanditStatsService periodically aggregates the bandit store and publishes
// the result as Prometheus gauges. The latest snapshot is served by the
// stats endpoint.
type BanditStatsService struct {
	store    bandit.Scanner
	interval time.Duration
	latest   atomic.Pointer[bandit.Stats]
	logger   zerolog.Logger
	name     string
}

// NewBanditStatsService creates the stats service. A non-positive interval
// defaults to 30s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBanditStatsService(store bandit.Scanner, interval time.Duration, logger zerolog.Logger) *BanditStatsService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &BanditStatsService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "bandit-stats").Logger(),
		name:     "bandit-stats",
	}
}

// Serve implements suture.Service. Collection errors are logged and retried
// on the next tick.
func (s *BanditStatsService) Serve(ctx context.Context) error {
	s.collect(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

func (s *BanditStatsService) collect(ctx context.Context) {
	// Scans must finish well inside one interval.
	scanCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	stats, err := bandit.CollectStats(scanCtx, s.store)
	if err != nil {
		s.logger.Warn().Err(err).Msg("bandit stats collection failed")
		return
	}
	s.latest.Store(&stats)
	metrics.UpdateBanditGauges(stats.TrackedItems, stats.MeanConversion)

	s.logger.Debug().
		Int("tracked_items", stats.TrackedItems).
		Float64("mean_conversion", stats.MeanConversion).
		Msg("bandit stats collected")
}

// Latest returns the most recent snapshot, or false before the first
// successful collection.
func (s *BanditStatsService) Latest() (bandit.Stats, bool) {
	p := s.latest.Load()
	if p == nil {
		return bandit.Stats{}, false
	}
	return *p, true
}

// String implements fmt.Stringer for suture logging.
func (s *BanditStatsService) String() string {
	return s.name
}
