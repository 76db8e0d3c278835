// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package bandit

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

// Stats summarizes the persisted bandit states.
type Stats struct {
	TrackedItems int `json:"tracked_items"`

	// MeanSuccess and MeanFailure average the Beta shapes.
	MeanSuccess float64 `json:"mean_success"`
	MeanFailure float64 `json:"mean_failure"`

	// MeanConversion averages success/(success+failure) per item.
	MeanConversion float64 `json:"mean_conversion"`

	CollectedAt time.Time `json:"collected_at"`
}

// CollectStats scans every state once. An empty store yields zero means.
func CollectStats(ctx context.Context, s Scanner) (Stats, error) {
	var (
		n                   int
		sumS, sumF, sumConv float64
	)

	err := s.Scan(ctx, func(_ ranking.ItemID, state ranking.BanditState) error {
		n++
		sumS += state.Success
		sumF += state.Failure
		sumConv += state.Mean()
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("collect bandit stats: %w", err)
	}

	stats := Stats{TrackedItems: n, CollectedAt: time.Now()}
	if n > 0 {
		stats.MeanSuccess = sumS / float64(n)
		stats.MeanFailure = sumF / float64(n)
		stats.MeanConversion = sumConv / float64(n)
	}
	return stats, nil
}
